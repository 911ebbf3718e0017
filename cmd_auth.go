package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"library-portal/library"
)

// Demo account created on first use of `login --demo user`.
const (
	demoUserEmail    = "user@library.com"
	demoUserPassword = "user123"
)

func (a *app) newRegisterCmd() *cobra.Command {
	var in library.RegisterInput
	var password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Email = strings.TrimSpace(in.Email)
			if in.Email == "" {
				return fmt.Errorf("--email is required")
			}
			switch library.Role(role) {
			case library.RoleUser, library.RoleAdmin:
				in.Role = library.Role(role)
			default:
				return fmt.Errorf("invalid role %q: use user or admin", role)
			}

			pw, err := passwordFrom(cmd, password, fmt.Sprintf("Enter password for %s: ", in.Email))
			if err != nil {
				return err
			}
			in.Password = pw

			_, err = a.mgr.Users.Register(cmd.Context(), in)
			return report(cmd, err, "Registration successful")
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.Email, "email", "", "account email")
	f.StringVar(&in.FirstName, "first", "", "first name")
	f.StringVar(&in.LastName, "last", "", "last name")
	f.StringVar(&password, "password", "", "password (prompted when omitted)")
	f.StringVar(&role, "role", string(library.RoleUser), "account role: user or admin")
	return cmd
}

func (a *app) newLoginCmd() *cobra.Command {
	var email, password, demo string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session until logout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			switch demo {
			case "":
			case "admin":
				email, password = library.SeedAdminEmail, library.SeedAdminPassword
			case "user":
				_, err := a.mgr.Users.Register(ctx, library.RegisterInput{
					Email:     demoUserEmail,
					Password:  demoUserPassword,
					FirstName: "Demo",
					LastName:  "User",
					Role:      library.RoleUser,
				})
				if err != nil && !library.IsCode(err, library.ErrCodeDuplicateEmail) {
					return err
				}
				email, password = demoUserEmail, demoUserPassword
			default:
				return fmt.Errorf("invalid --demo %q: use user or admin", demo)
			}

			if email == "" {
				return fmt.Errorf("--email is required")
			}
			pw, err := passwordFrom(cmd, password, "Password: ")
			if err != nil {
				return err
			}

			session, err := a.mgr.Users.Login(ctx, email, pw)
			if err := report(cmd, err, "Login successful"); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s (%s)\n", session.FullName(), session.Role)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&email, "email", "", "account email")
	f.StringVar(&password, "password", "", "password (prompted when omitted)")
	f.StringVar(&demo, "demo", "", "log in with a demo account: user or admin")
	return cmd
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return report(cmd, a.mgr.Users.Logout(cmd.Context()), "Logged out")
		},
	}
}

func (a *app) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.requireSession()
			if err != nil {
				return err
			}
			active := len(a.mgr.Catalog.ListUserBorrowedBooks(s.ID))
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "ID:       %s\n", s.ID)
			fmt.Fprintf(w, "Name:     %s\n", s.FullName())
			fmt.Fprintf(w, "Email:    %s\n", s.Email)
			fmt.Fprintf(w, "Role:     %s\n", s.Role)
			fmt.Fprintf(w, "Borrowed: %d/%d\n", active, s.BorrowLimit)
			return nil
		},
	}
}

func (a *app) newProfileCmd() *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Manage your profile",
	}

	var first, last, email string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your name or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var upd library.ProfileUpdate
			f := cmd.Flags()
			if f.Changed("first") {
				upd.FirstName = &first
			}
			if f.Changed("last") {
				upd.LastName = &last
			}
			if f.Changed("email") {
				email = strings.TrimSpace(email)
				if email == "" {
					return fmt.Errorf("--email cannot be empty")
				}
				upd.Email = &email
			}
			if upd == (library.ProfileUpdate{}) {
				return fmt.Errorf("nothing to update: pass --first, --last or --email")
			}

			_, err := a.mgr.Users.UpdateProfile(cmd.Context(), upd)
			return report(cmd, err, "Profile updated successfully")
		},
	}
	update.Flags().StringVar(&first, "first", "", "new first name")
	update.Flags().StringVar(&last, "last", "", "new last name")
	update.Flags().StringVar(&email, "email", "", "new email")

	profile.AddCommand(update)
	return profile
}
