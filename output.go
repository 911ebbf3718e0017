package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"library-portal/library"
)

// readPassword reads a password with masking. Without a terminal the caller
// must pass --password instead.
func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal to prompt on: pass --password")
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	bytePassword, err := term.ReadPassword(fd)
	if err != nil {
		return "", err
	}
	fmt.Fprintln(cmd.ErrOrStderr())
	return strings.TrimSpace(string(bytePassword)), nil
}

// passwordFrom returns the --password flag or prompts for it.
func passwordFrom(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	pw, err := readPassword(cmd, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if pw == "" {
		return "", errors.New("password cannot be empty")
	}
	return pw, nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func formatDate(t time.Time) string { return t.Format("2006-01-02") }

func printBooks(w io.Writer, books []library.Book) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return
	}
	fmt.Fprintf(w, "%-28s %-30s %-22s %-20s %s\n", "ID", "Title", "Author", "Genre", "Available")
	fmt.Fprintln(w, strings.Repeat("-", 112))
	for _, b := range books {
		b.Title = truncateString(b.Title, 30)
		b.Author = truncateString(b.Author, 22)
		b.Genre = truncateString(b.Genre, 20)
		fmt.Fprintln(w, library.PrettyBook(b))
	}
}

func printTransactions(w io.Writer, txs []library.BorrowTransaction, now time.Time, overdueDays int) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions found.")
		return
	}
	fmt.Fprintf(w, "%-28s %-30s %-20s %-10s %-10s %-9s %s\n", "ID", "Book", "User", "Borrowed", "Returned", "Status", "Days")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, t := range txs {
		returned := "-"
		days := library.DaysBorrowed(t, now)
		if t.ReturnDate != nil {
			returned = formatDate(*t.ReturnDate)
			days = library.DaysBetween(t.BorrowDate, *t.ReturnDate)
		}
		status := string(t.Status)
		if library.IsOverdue(t, now, overdueDays) {
			status = "overdue"
		}
		fmt.Fprintf(w, "%-28s %-30s %-20s %-10s %-10s %-9s %d\n",
			t.ID,
			truncateString(t.BookTitle, 30),
			truncateString(t.UserName, 20),
			formatDate(t.BorrowDate),
			returned,
			status,
			days)
	}
}

func printStats(w io.Writer, st library.TransactionStats) {
	fmt.Fprintf(w, "Transactions: %d | Active: %d | Returned: %d | Overdue: %d | Avg. return: %d day(s)\n",
		st.Total, st.Active, st.Returned, st.Overdue, st.AverageReturnDays)
}
