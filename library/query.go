package library

import (
	"math"
	"slices"
	"sort"
	"strings"
	"time"
)

// DefaultOverdueDays is how long a book may stay out before it counts as overdue.
const DefaultOverdueDays = 14

// ------------------ Books ------------------

// BookFilter narrows a book list. Zero values disable each criterion.
type BookFilter struct {
	Term          string // title, author, genre or ISBN, case-insensitive
	Genre         string // exact match
	AvailableOnly bool
}

func FilterBooks(books []Book, f BookFilter) []Book {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	var out []Book
	for _, b := range books {
		if term != "" && !(containsFold(b.Title, term) || containsFold(b.Author, term) ||
			containsFold(b.Genre, term) || containsFold(b.ISBN, term)) {
			continue
		}
		if f.Genre != "" && b.Genre != f.Genre {
			continue
		}
		if f.AvailableOnly && b.AvailableCopies <= 0 {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Genres returns the distinct genres of books, sorted.
func Genres(books []Book) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, b := range books {
		if _, ok := seen[b.Genre]; ok {
			continue
		}
		seen[b.Genre] = struct{}{}
		out = append(out, b.Genre)
	}
	sort.Strings(out)
	return out
}

// ------------------ Transactions ------------------

type TxSort string

const (
	SortByBorrowDate TxSort = "borrowDate"
	SortByBookTitle  TxSort = "bookTitle"
	SortByUserName   TxSort = "userName"
	SortByReturnDate TxSort = "returnDate"
)

// TransactionFilter narrows and orders a transaction list.
type TransactionFilter struct {
	Term   string   // book title, user name or user email, case-insensitive
	Status TxStatus // empty matches both states
	SortBy TxSort   // empty means SortByBorrowDate
}

// FilterTransactions returns a filtered, sorted copy of txs.
func FilterTransactions(txs []BorrowTransaction, f TransactionFilter) []BorrowTransaction {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	var out []BorrowTransaction
	for _, t := range txs {
		if term != "" && !(containsFold(t.BookTitle, term) || containsFold(t.UserName, term) ||
			containsFold(t.UserEmail, term)) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		out = append(out, t)
	}
	SortTransactions(out, f.SortBy)
	return out
}

// SortTransactions orders txs in place. Dates sort newest first, names
// alphabetically; for SortByReturnDate open transactions go last.
func SortTransactions(txs []BorrowTransaction, by TxSort) {
	switch by {
	case SortByBookTitle:
		sort.SliceStable(txs, func(i, j int) bool { return txs[i].BookTitle < txs[j].BookTitle })
	case SortByUserName:
		sort.SliceStable(txs, func(i, j int) bool { return txs[i].UserName < txs[j].UserName })
	case SortByReturnDate:
		sort.SliceStable(txs, func(i, j int) bool {
			a, b := txs[i].ReturnDate, txs[j].ReturnDate
			switch {
			case a != nil && b != nil:
				return a.After(*b)
			case a != nil:
				return true
			default:
				return false
			}
		})
	default:
		sort.SliceStable(txs, func(i, j int) bool { return txs[i].BorrowDate.After(txs[j].BorrowDate) })
	}
}

// DaysBetween is the number of started days between a and b, in either order.
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return int(math.Ceil(d.Hours() / 24))
}

// DaysBorrowed counts the days since t was borrowed, as of now.
func DaysBorrowed(t BorrowTransaction, now time.Time) int {
	return DaysBetween(t.BorrowDate, now)
}

// IsOverdue reports whether t is still out after more than overdueDays.
func IsOverdue(t BorrowTransaction, now time.Time, overdueDays int) bool {
	return t.Status == StatusBorrowed && DaysBorrowed(t, now) > overdueDays
}

type TransactionStats struct {
	Total             int `json:"total"`
	Active            int `json:"active"`
	Returned          int `json:"returned"`
	Overdue           int `json:"overdue"`
	AverageReturnDays int `json:"averageReturnDays"`
}

// ComputeTransactionStats summarises txs as of now.
func ComputeTransactionStats(txs []BorrowTransaction, now time.Time, overdueDays int) TransactionStats {
	st := TransactionStats{Total: len(txs)}
	totalDays, closed := 0, 0
	for _, t := range txs {
		switch t.Status {
		case StatusBorrowed:
			st.Active++
			if IsOverdue(t, now, overdueDays) {
				st.Overdue++
			}
		case StatusReturned:
			st.Returned++
			if t.ReturnDate != nil {
				totalDays += DaysBetween(t.BorrowDate, *t.ReturnDate)
				closed++
			}
		}
	}
	if closed > 0 {
		st.AverageReturnDays = int(math.Round(float64(totalDays) / float64(closed)))
	}
	return st
}

// UserHistory returns every transaction of userID, newest first.
func UserHistory(txs []BorrowTransaction, userID string) []BorrowTransaction {
	var out []BorrowTransaction
	for _, t := range txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	SortTransactions(out, SortByBorrowDate)
	return out
}

// RecentActivity returns at most n transactions, newest first. A non-empty
// userID restricts the list to that user.
func RecentActivity(txs []BorrowTransaction, userID string, n int) []BorrowTransaction {
	var out []BorrowTransaction
	if userID != "" {
		out = UserHistory(txs, userID)
	} else {
		out = slices.Clone(txs)
		SortTransactions(out, SortByBorrowDate)
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}
