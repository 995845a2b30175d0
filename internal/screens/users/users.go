// Package users is the profile management screen: switch, add and delete
// users.
package users

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/screen"
	"github.com/abhisek/flashmath/internal/ui/components"
	"github.com/abhisek/flashmath/internal/ui/layout"
	"github.com/abhisek/flashmath/internal/ui/theme"
	profiles "github.com/abhisek/flashmath/internal/users"
)

const maxNameLength = 24

type mode int

const (
	modeList mode = iota
	modeAdd
	modeConfirmDelete
)

// UsersScreen lists profiles and edits them.
type UsersScreen struct {
	env    screen.Env
	list   []profiles.User
	menu   components.Menu
	mode   mode
	input  components.TextInput
	status string
	errMsg string
}

var (
	_ screen.Screen          = (*UsersScreen)(nil)
	_ screen.KeyHintProvider = (*UsersScreen)(nil)
	_ screen.EscapeHandler   = (*UsersScreen)(nil)
)

// New creates the users screen with the cursor on the current user.
func New(env screen.Env) *UsersScreen {
	s := &UsersScreen{env: env}
	s.reload()
	return s
}

func (s *UsersScreen) reload() {
	s.list = s.env.Trainer.Users()
	cur := s.env.Trainer.CurrentUser()
	items := make([]components.MenuItem, len(s.list))
	selected := 0
	for i, u := range s.list {
		items[i] = components.MenuItem{Label: u.Name}
		if u.Name == cur {
			items[i].Detail = "● current"
			selected = i
		}
	}
	s.menu = components.NewMenu(items)
	s.menu.Selected = selected
}

func (s *UsersScreen) switchTo(name string) {
	if err := s.env.Trainer.SwitchUser(s.env.Ctx, name); err != nil {
		s.fail("switch user", err)
		return
	}
	s.reload()
	s.errMsg = ""
	s.status = "Now practicing as " + name
}

func (s *UsersScreen) Init() tea.Cmd { return nil }

func (s *UsersScreen) Title() string { return "Users" }

// HandlesEscape keeps Esc inside the screen while a name is typed or a
// delete waits for confirmation.
func (s *UsersScreen) HandlesEscape() bool {
	return s.mode != modeList
}

func (s *UsersScreen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeAdd:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Create"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeConfirmDelete:
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Switch"},
		{Key: "N", Description: "New"},
		{Key: "D", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *UsersScreen) selected() string {
	i := s.menu.Selected
	if i < 0 || i >= len(s.list) {
		return ""
	}
	return s.list[i].Name
}

func (s *UsersScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch s.mode {
	case modeAdd:
		return s.updateAdd(msg)
	case modeConfirmDelete:
		return s.updateConfirm(msg)
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "up", "k", "down", "j":
		s.menu, _ = s.menu.Update(msg)
	case "enter":
		s.switchTo(s.selected())
	case "n":
		s.mode = modeAdd
		s.errMsg, s.status = "", ""
		s.input = components.NewTextInput("Name", maxNameLength)
		return s, s.input.Init()
	case "d":
		if len(s.list) <= 1 {
			s.errMsg = capitalize(profiles.ErrLastUser.Error())
			return s, nil
		}
		s.mode = modeConfirmDelete
		s.errMsg, s.status = "", ""
	}
	return s, nil
}

func (s *UsersScreen) updateAdd(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "esc":
			s.mode = modeList
			s.errMsg = ""
			return s, nil
		case "enter":
			u, err := s.env.Trainer.CreateUser(s.env.Ctx, s.input.Value())
			if err != nil {
				s.input.Reject()
				s.fail("create user", err)
				return s, nil
			}
			s.mode = modeList
			s.reload()
			s.menu.Selected = len(s.list) - 1
			s.errMsg = ""
			s.status = "Created " + u.Name
			return s, nil
		}
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *UsersScreen) updateConfirm(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "y", "Y":
		name := s.selected()
		s.mode = modeList
		if err := s.env.Trainer.DeleteUser(s.env.Ctx, name); err != nil {
			s.fail("delete user", err)
			return s, nil
		}
		s.reload()
		s.status = "Deleted " + name
	case "n", "N", "esc":
		s.mode = modeList
	}
	return s, nil
}

func (s *UsersScreen) fail(op string, err error) {
	s.env.Log.Info(op, zap.Error(err))
	switch {
	case errors.Is(err, profiles.ErrUserExists):
		s.errMsg = "That name is taken"
	case errors.Is(err, profiles.ErrInvalidName):
		s.errMsg = "Enter a name"
	default:
		s.errMsg = capitalize(err.Error())
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (s *UsersScreen) View(width, height int) string {
	cw := max(min(width-4, 60), 30)

	var b strings.Builder
	b.WriteString(theme.Title.Render("Users"))
	b.WriteString("\n\n")
	b.WriteString(s.menu.View())

	switch s.mode {
	case modeAdd:
		b.WriteString("\n")
		b.WriteString(theme.Body.Render("New user: "))
		b.WriteString(s.input.View())
		b.WriteString("\n")
	case modeConfirmDelete:
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render(fmt.Sprintf("Delete %s and all their progress? (y/n)", s.selected())))
		b.WriteString("\n")
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.Incorrect.Render(s.errMsg))
	} else if s.status != "" {
		b.WriteString("\n")
		b.WriteString(theme.Correct.Render(s.status))
	}

	card := components.ArcadeCard(lipgloss.NewStyle().Align(lipgloss.Left).Render(b.String()), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
