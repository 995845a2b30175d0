package users

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/flashmath/internal/logger"
	"github.com/abhisek/flashmath/internal/store"
)

// DefaultUser is created when no profile exists.
const DefaultUser = store.LegacyUser

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidName  = errors.New("user name is required")
	ErrLastUser     = errors.New("cannot delete the last user")
)

// User is a named profile.
type User struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Directory keeps the list of profiles and which one is active. Switching
// users only changes the active name; per-user data is namespaced by name.
type Directory struct {
	kv  store.KV
	log *zap.Logger
	now func() time.Time

	mu      sync.RWMutex
	users   []User
	current string
}

// New creates a directory over kv. Call Init before use.
func New(kv store.KV, log *zap.Logger) *Directory {
	log = logger.OrNop(log)
	return &Directory{kv: kv, log: log, now: time.Now}
}

// Init loads the profiles. With none stored it creates DefaultUser; a saved
// active user that no longer exists falls back to the first profile.
func (d *Directory) Init(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var users []User
	if err := store.GetJSON(ctx, d.kv, store.KeyUsers, &users); err != nil && !errors.Is(err, store.ErrNotFound) {
		d.log.Warn("load users failed", zap.Error(err), zap.String("key", store.KeyUsers))
		users = nil
	}
	users = slices.DeleteFunc(users, func(u User) bool { return strings.TrimSpace(u.Name) == "" })

	if len(users) == 0 {
		d.users = []User{{Name: DefaultUser, CreatedAt: d.now().UTC()}}
		d.current = DefaultUser
		d.saveUsers(ctx)
		d.saveCurrent(ctx)
		return
	}
	d.users = users

	var saved string
	if err := store.GetJSON(ctx, d.kv, store.KeyCurrentUser, &saved); err != nil && !errors.Is(err, store.ErrNotFound) {
		d.log.Warn("load current user failed", zap.Error(err), zap.String("key", store.KeyCurrentUser))
	}
	if d.index(saved) >= 0 {
		d.current = saved
		return
	}
	d.current = users[0].Name
	d.saveCurrent(ctx)
}

// List returns every profile in creation order.
func (d *Directory) List() []User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.users)
}

// Current returns the active user name.
func (d *Directory) Current() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// Exists reports whether a profile named name exists.
func (d *Directory) Exists(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.index(name) >= 0
}

// Create adds a profile. The name is trimmed and must be unique.
func (d *Directory) Create(ctx context.Context, name string) (User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return User{}, ErrInvalidName
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.index(name) >= 0 {
		return User{}, fmt.Errorf("%w: %s", ErrUserExists, name)
	}
	u := User{Name: name, CreatedAt: d.now().UTC()}
	d.users = append(d.users, u)
	d.saveUsers(ctx)
	return u, nil
}

// Switch makes name the active profile.
func (d *Directory) Switch(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.index(name) < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}
	d.current = name
	d.saveCurrent(ctx)
	return nil
}

// Delete removes a profile from the directory. The last profile cannot be
// removed; deleting the active one switches to the first remaining. Callers
// remove the user's progress and settings.
func (d *Directory) Delete(ctx context.Context, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, name)
	}
	if len(d.users) == 1 {
		return ErrLastUser
	}
	d.users = slices.Delete(d.users, i, i+1)
	d.saveUsers(ctx)

	if d.current == name {
		d.current = d.users[0].Name
		d.saveCurrent(ctx)
	}
	return nil
}

func (d *Directory) index(name string) int {
	return slices.IndexFunc(d.users, func(u User) bool { return u.Name == name })
}

func (d *Directory) saveUsers(ctx context.Context) {
	if err := store.SetJSON(ctx, d.kv, store.KeyUsers, d.users); err != nil {
		d.log.Warn("save users failed", zap.Error(err), zap.String("key", store.KeyUsers))
	}
}

func (d *Directory) saveCurrent(ctx context.Context) {
	if err := store.SetJSON(ctx, d.kv, store.KeyCurrentUser, d.current); err != nil {
		d.log.Warn("save current user failed", zap.Error(err), zap.String("user", d.current))
	}
}
