package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"library-portal/library"
)

func (a *app) now() time.Time { return a.mgr.Now() }

func (a *app) newUsersCmd() *cobra.Command {
	users := &cobra.Command{
		Use:   "users",
		Short: "Inspect user accounts (admin)",
	}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireAdmin(); err != nil {
				return err
			}
			accounts, err := a.mgr.Users.SearchUserAccounts(cmd.Context(), search)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(accounts) == 0 {
				fmt.Fprintln(w, "No users found.")
				return nil
			}
			fmt.Fprintf(w, "%-28s %-25s %-30s %-8s %s\n", "ID", "Name", "Email", "Active", "Joined")
			fmt.Fprintln(w, strings.Repeat("-", 105))
			for _, acct := range accounts {
				active := len(a.mgr.Catalog.ListUserBorrowedBooks(acct.ID))
				fmt.Fprintf(w, "%-28s %-25s %-30s %-8s %s\n",
					acct.ID,
					truncateString(acct.FullName(), 25),
					truncateString(acct.Email, 30),
					fmt.Sprintf("%d/%d", active, acct.BorrowLimit),
					formatDate(acct.CreatedAt))
			}
			return nil
		},
	}
	list.Flags().StringVar(&search, "search", "", "match first name, last name or email")

	show := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show one account with its borrowing history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAdmin(); err != nil {
				return err
			}
			sum, err := a.mgr.UserSummary(cmd.Context(), args[0])
			if err != nil {
				return report(cmd, err, "")
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s <%s>\n", sum.Account.FullName(), sum.Account.Email)
			fmt.Fprintf(w, "Member since %s | Active: %d/%d | Total borrows: %d\n",
				formatDate(sum.Account.CreatedAt), sum.ActiveBorrows, sum.Account.BorrowLimit, sum.TotalBorrows)
			printTransactions(w, sum.History, a.now(), a.mgr.OverdueDays())
			return nil
		},
	}

	users.AddCommand(list, show)
	return users
}

func (a *app) newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Circulation statistics and overdue books (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireAdmin(); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printStats(w, a.mgr.TransactionStats())

			overdue := a.mgr.OverdueTransactions()
			if len(overdue) == 0 {
				fmt.Fprintln(w, "No overdue books.")
				return nil
			}
			fmt.Fprintf(w, "\nOverdue (more than %d days):\n", a.mgr.OverdueDays())
			printTransactions(w, overdue, a.now(), a.mgr.OverdueDays())
			return nil
		},
	}
}

func (a *app) newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summary for the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.requireSession()
			if err != nil {
				return err
			}
			d, err := a.mgr.Dashboard(cmd.Context(), *s)
			if err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), s, d, a.now(), a.mgr.OverdueDays())
			return nil
		},
	}
}

func printDashboard(w io.Writer, s *library.Session, d library.Dashboard, now time.Time, overdueDays int) {
	fmt.Fprintf(w, "Welcome back, %s!\n", s.FullName())
	fmt.Fprintf(w, "Books: %d | Available: %d | Active borrows: %d\n", d.TotalBooks, d.AvailableBooks, d.ActiveBorrows)
	if s.Role == library.RoleAdmin {
		fmt.Fprintf(w, "Users: %d\n", d.TotalUsers)
	} else {
		fmt.Fprintf(w, "Your books: %d/%d\n", d.UserBorrowedBooks, s.BorrowLimit)
	}
	fmt.Fprintln(w, "\nRecent activity:")
	printTransactions(w, d.RecentActivity, now, overdueDays)
}
