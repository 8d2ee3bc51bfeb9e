package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/usersync/internal/users"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Load and print every user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			if err := resultError(ctrl.Start(cmd.Context())); err != nil {
				return err
			}
			printUsers(cmd.OutOrStdout(), ctrl.Users())
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create a user, then print the reloaded list",
		Example: `  usersync create --name Ada --email ada@example.com`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			ctrl.SetCreateForm(name, email)
			if err := writeResult(cmd, ctrl.Create(cmd.Context())); err != nil {
				return err
			}
			printUsers(cmd.OutOrStdout(), ctrl.Users())
			return nil
		},
	}
	cmd.Flags().String("name", "", "Name of the new user")
	cmd.Flags().String("email", "", "Email of the new user")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a user's name or email, then print the reloaded list",
		Long: `Update sends both fields. A field left empty is sent as an empty string,
which the bundled user service treats as "keep the stored value".`,
		Example: `  usersync update 3 --email ada@lovelace.dev`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			ctrl.SetUpdateForm(args[0], name, email)
			if err := writeResult(cmd, ctrl.Update(cmd.Context())); err != nil {
				return err
			}
			printUsers(cmd.OutOrStdout(), ctrl.Users())
			return nil
		},
	}
	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("email", "", "New email")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a user, then print the reloaded list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid user id %q", args[0])
			}
			ctrl, err := newController(cmd)
			if err != nil {
				return err
			}
			if err := writeResult(cmd, ctrl.Delete(cmd.Context(), id)); err != nil {
				return err
			}
			printUsers(cmd.OutOrStdout(), ctrl.Users())
			return nil
		},
	}
}

func printUsers(w io.Writer, list []users.User) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No users.")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, u := range list {
		rows = append(rows, []string{strconv.FormatInt(u.ID, 10), u.Name, u.Email})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "EMAIL").
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}
