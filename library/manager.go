package library

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"library-portal/config"
)

// Recent activity sizes shown on the dashboard.
const (
	userRecentActivity  = 5
	adminRecentActivity = 10
)

// LibraryManager is a thin façade that owns the storage backend and the two
// stores built on it, keeping CLI code simple.
type LibraryManager struct {
	kv          KVStore
	log         zerolog.Logger
	clock       Clock
	overdueDays int

	Users   *UserStore
	Catalog *CatalogStore
}

// OpenKVStore opens the storage backend selected by cfg.
func OpenKVStore(ctx context.Context, cfg *config.AppConfig) (KVStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return NewDatabase(cfg.Storage.Path)
	case config.DriverRedis:
		return NewRedisStore(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// NewLibraryManager opens the configured backend and hydrates both stores.
func NewLibraryManager(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) (*LibraryManager, error) {
	kv, err := OpenKVStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("driver", cfg.Storage.Driver).Msg("storage opened")

	m, err := NewManagerFromStore(ctx, kv, cfg.Library.OverdueDays,
		WithLogger(logger), WithSeed(cfg.Library.Seed))
	if err != nil {
		kv.Close()
		return nil, err
	}
	return m, nil
}

// NewManagerFromStore builds the stores on an already opened backend. The
// manager takes ownership of kv.
func NewManagerFromStore(ctx context.Context, kv KVStore, overdueDays int, opts ...Option) (*LibraryManager, error) {
	o := buildOptions(opts)
	users, err := NewUserStore(ctx, kv, opts...)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	catalog, err := NewCatalogStore(ctx, kv, opts...)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return &LibraryManager{
		kv:          kv,
		log:         o.logger,
		clock:       o.clock,
		overdueDays: overdueDays,
		Users:       users,
		Catalog:     catalog,
	}, nil
}

// Close closes the underlying storage.
func (lm *LibraryManager) Close() error {
	lm.log.Debug().Msg("closing storage")
	return lm.kv.Close()
}

func (lm *LibraryManager) OverdueDays() int { return lm.overdueDays }

// Now is the manager's notion of the current time.
func (lm *LibraryManager) Now() time.Time { return lm.clock.Now() }

// ------------------ Reports ------------------

func (lm *LibraryManager) TransactionStats() TransactionStats {
	return ComputeTransactionStats(lm.Catalog.ListAllTransactions(), lm.clock.Now(), lm.overdueDays)
}

// OverdueTransactions lists open transactions past the overdue threshold, oldest first.
func (lm *LibraryManager) OverdueTransactions() []BorrowTransaction {
	now := lm.clock.Now()
	var out []BorrowTransaction
	for _, t := range lm.Catalog.ListAllTransactions() {
		if IsOverdue(t, now, lm.overdueDays) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].BorrowDate.Before(out[j].BorrowDate) })
	return out
}

type Dashboard struct {
	TotalBooks        int                 `json:"totalBooks"`
	AvailableBooks    int                 `json:"availableBooks"`
	TotalUsers        int                 `json:"totalUsers"`
	ActiveBorrows     int                 `json:"activeBorrows"`
	UserBorrowedBooks int                 `json:"userBorrowedBooks"`
	RecentActivity    []BorrowTransaction `json:"recentActivity"`
}

// Dashboard summarises the library for the logged-in session. Admins get the
// user count and library-wide activity; users get their own.
func (lm *LibraryManager) Dashboard(ctx context.Context, s Session) (Dashboard, error) {
	books := lm.Catalog.ListBooks()
	txs := lm.Catalog.ListAllTransactions()

	d := Dashboard{
		TotalBooks:     len(books),
		AvailableBooks: len(FilterBooks(books, BookFilter{AvailableOnly: true})),
	}
	for _, t := range txs {
		if t.Status == StatusBorrowed {
			d.ActiveBorrows++
		}
	}

	if s.Role == RoleAdmin {
		users, err := lm.Users.ListUserAccounts(ctx)
		if err != nil {
			return Dashboard{}, err
		}
		d.TotalUsers = len(users)
		d.RecentActivity = RecentActivity(txs, "", adminRecentActivity)
		return d, nil
	}

	d.UserBorrowedBooks = len(lm.Catalog.ListUserBorrowedBooks(s.ID))
	d.RecentActivity = RecentActivity(txs, s.ID, userRecentActivity)
	return d, nil
}

// UserSummary is the admin view of one account.
type UserSummary struct {
	Account       Account             `json:"account"`
	ActiveBorrows int                 `json:"activeBorrows"`
	TotalBorrows  int                 `json:"totalBorrows"`
	History       []BorrowTransaction `json:"history"`
}

func (lm *LibraryManager) UserSummary(ctx context.Context, userID string) (UserSummary, error) {
	acct, err := lm.Users.GetAccount(ctx, userID)
	if err != nil {
		return UserSummary{}, err
	}
	history := UserHistory(lm.Catalog.ListAllTransactions(), userID)
	sum := UserSummary{Account: acct, TotalBorrows: len(history), History: history}
	for _, t := range history {
		if t.Status == StatusBorrowed {
			sum.ActiveBorrows++
		}
	}
	return sum, nil
}

// ------------------ Utilities ------------------

// PrettyBook formats a book for lists.
func PrettyBook(b Book) string {
	return fmt.Sprintf("%-28s %-30s %-22s %-20s %d/%d", b.ID, b.Title, b.Author, b.Genre, b.AvailableCopies, b.TotalCopies)
}
