package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user profiles",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles; the current one is marked",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		out := cmd.OutOrStdout()
		cur := d.trainer.CurrentUser()
		for _, u := range d.trainer.Users() {
			marker := " "
			if u.Name == cur {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %-24s  created %s\n", marker, u.Name, u.CreatedAt.Local().Format("2006-01-02"))
		}
		return nil
	},
}

var usersAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		u, err := d.trainer.CreateUser(ctxOf(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", u.Name)
		return nil
	},
}

var usersSwitchCmd = &cobra.Command{
	Use:   "switch <name>",
	Short: "Make a profile the current user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.trainer.SwitchUser(ctxOf(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Now practicing as %s\n", args[0])
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile and all of its progress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd, false)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.trainer.DeleteUser(ctxOf(cmd), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	usersCmd.AddCommand(usersListCmd, usersAddCmd, usersSwitchCmd, usersDeleteCmd)
}
