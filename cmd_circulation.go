package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"library-portal/library"
)

var (
	errOwnLimitReached = errors.New("You have reached your borrowing limit")
	errAlreadyReturned = errors.New("Book already returned")
)

func (a *app) newBorrowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <book-id>",
		Short: "Borrow a copy of a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.requireSession()
			if err != nil {
				return err
			}
			// The account's own limit is checked here; the catalog applies its
			// global cap on top.
			if len(a.mgr.Catalog.ListUserBorrowedBooks(s.ID)) >= s.BorrowLimit {
				return errOwnLimitReached
			}

			tx, err := a.mgr.Catalog.BorrowBook(cmd.Context(), args[0], s.ID, s.FullName(), s.Email)
			if err := report(cmd, err, "Book borrowed successfully"); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transaction: %s\n", tx.ID)
			return nil
		},
	}
}

func (a *app) newReturnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <transaction-id>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.requireSession()
			if err != nil {
				return err
			}
			if tx, ok := a.mgr.Catalog.GetTransaction(args[0]); ok {
				if s.Role != library.RoleAdmin && tx.UserID != s.ID {
					return report(cmd, library.ErrTransactionNotFound(), "")
				}
				if tx.Status == library.StatusReturned {
					return errAlreadyReturned
				}
			}

			_, err = a.mgr.Catalog.ReturnBook(cmd.Context(), args[0])
			return report(cmd, err, "Book returned successfully")
		},
	}
}

func (a *app) newBorrowedCmd() *cobra.Command {
	var history bool
	cmd := &cobra.Command{
		Use:   "borrowed",
		Short: "Show your borrowed books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.requireSession()
			if err != nil {
				return err
			}
			txs := a.mgr.Catalog.ListUserBorrowedBooks(s.ID)
			if history {
				txs = library.UserHistory(a.mgr.Catalog.ListAllTransactions(), s.ID)
			}
			printTransactions(cmd.OutOrStdout(), txs, a.now(), a.mgr.OverdueDays())
			return nil
		},
	}
	cmd.Flags().BoolVar(&history, "history", false, "include returned books")
	return cmd
}

func (a *app) newTransactionsCmd() *cobra.Command {
	var (
		filter library.TransactionFilter
		status string
		sortBy string
	)
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List all borrow transactions (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireAdmin(); err != nil {
				return err
			}
			switch library.TxStatus(status) {
			case "", library.StatusBorrowed, library.StatusReturned:
				filter.Status = library.TxStatus(status)
			default:
				return fmt.Errorf("invalid --status %q: use borrowed or returned", status)
			}
			switch library.TxSort(sortBy) {
			case library.SortByBorrowDate, library.SortByBookTitle, library.SortByUserName, library.SortByReturnDate:
				filter.SortBy = library.TxSort(sortBy)
			default:
				return fmt.Errorf("invalid --sort %q", sortBy)
			}

			all := a.mgr.Catalog.ListAllTransactions()
			w := cmd.OutOrStdout()
			printStats(w, library.ComputeTransactionStats(all, a.now(), a.mgr.OverdueDays()))
			printTransactions(w, library.FilterTransactions(all, filter), a.now(), a.mgr.OverdueDays())
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&filter.Term, "search", "", "match book title, user name or email")
	f.StringVar(&status, "status", "", "borrowed or returned")
	f.StringVar(&sortBy, "sort", string(library.SortByBorrowDate), "borrowDate, bookTitle, userName or returnDate")
	return cmd
}
