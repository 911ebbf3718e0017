package library

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// MaxActiveBorrows caps how many books one user may hold at once. It is
// enforced here regardless of the account's own BorrowLimit, which front
// ends check separately.
const MaxActiveBorrows = 5

// CatalogStore owns the books and the borrow transactions, mirrored to the
// "books" and "transactions" keys.
type CatalogStore struct {
	mu    sync.Mutex
	kv    KVStore
	log   zerolog.Logger
	clock Clock
	ids   IDGen

	books        []Book
	transactions []BorrowTransaction
}

// BookInput describes a new book. AvailableCopies defaults to TotalCopies.
type BookInput struct {
	Title           string
	Author          string
	ISBN            string
	Genre           string
	Description     string
	TotalCopies     int
	AvailableCopies *int
	AddedBy         string
}

// BookUpdate lists the fields to merge into a book; nil fields are left alone.
// Merged values are not re-validated against each other.
type BookUpdate struct {
	Title           *string
	Author          *string
	ISBN            *string
	Genre           *string
	Description     *string
	TotalCopies     *int
	AvailableCopies *int
	AddedBy         *string
}

// NewCatalogStore hydrates books and transactions from kv.
func NewCatalogStore(ctx context.Context, kv KVStore, opts ...Option) (*CatalogStore, error) {
	o := buildOptions(opts)
	c := &CatalogStore{
		kv:    kv,
		log:   o.logger.With().Str("store", "catalog").Logger(),
		clock: o.clock,
		ids:   o.ids,
	}

	var books []Book
	found, err := loadJSON(ctx, kv, KeyBooks, &books)
	if err != nil {
		return nil, err
	}
	switch {
	case found:
		c.books = books
	case o.seed:
		c.books = seedBooks(o.clock.Now())
	}

	if _, err := loadJSON(ctx, kv, KeyTransactions, &c.transactions); err != nil {
		return nil, err
	}
	return c, nil
}

// ------------------ Books ------------------

func (c *CatalogStore) ListBooks() []Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.books)
}

func (c *CatalogStore) ListAvailableBooks() []Book {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Book
	for _, b := range c.books {
		if b.AvailableCopies > 0 {
			out = append(out, b)
		}
	}
	return out
}

func (c *CatalogStore) GetBook(id string) (Book, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.bookIndex(id)
	if i < 0 {
		return Book{}, false
	}
	return c.books[i], true
}

func (c *CatalogStore) bookIndex(id string) int {
	return slices.IndexFunc(c.books, func(b Book) bool { return b.ID == id })
}

// AddBook appends a new book. ISBNs are not checked for duplicates.
func (c *CatalogStore) AddBook(ctx context.Context, in BookInput) (Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.ids.New()
	if err != nil {
		return Book{}, err
	}
	available := in.TotalCopies
	if in.AvailableCopies != nil {
		available = *in.AvailableCopies
	}
	book := Book{
		ID:              id,
		Title:           in.Title,
		Author:          in.Author,
		ISBN:            in.ISBN,
		Genre:           in.Genre,
		Description:     in.Description,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: available,
		AddedAt:         c.clock.Now(),
		AddedBy:         in.AddedBy,
	}

	books := append(slices.Clone(c.books), book)
	if err := saveJSON(ctx, c.kv, KeyBooks, books); err != nil {
		return Book{}, err
	}
	c.books = books

	c.log.Debug().Str("book_id", book.ID).Str("title", book.Title).Msg("book added")
	return book, nil
}

func (c *CatalogStore) UpdateBook(ctx context.Context, id string, upd BookUpdate) (Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.bookIndex(id)
	if i < 0 {
		c.log.Info().Str("book_id", id).Msg("update rejected: book not found")
		return Book{}, ErrBookNotFound()
	}

	books := slices.Clone(c.books)
	b := &books[i]
	if upd.Title != nil {
		b.Title = *upd.Title
	}
	if upd.Author != nil {
		b.Author = *upd.Author
	}
	if upd.ISBN != nil {
		b.ISBN = *upd.ISBN
	}
	if upd.Genre != nil {
		b.Genre = *upd.Genre
	}
	if upd.Description != nil {
		b.Description = *upd.Description
	}
	if upd.TotalCopies != nil {
		b.TotalCopies = *upd.TotalCopies
	}
	if upd.AvailableCopies != nil {
		b.AvailableCopies = *upd.AvailableCopies
	}
	if upd.AddedBy != nil {
		b.AddedBy = *upd.AddedBy
	}

	if err := saveJSON(ctx, c.kv, KeyBooks, books); err != nil {
		return Book{}, err
	}
	c.books = books

	c.log.Debug().Str("book_id", id).Msg("book updated")
	return books[i], nil
}

// ------------------ Circulation ------------------

// BorrowBook lends one copy of bookID to the user and records the transaction.
// userName and userEmail are stored as given.
func (c *CatalogStore) BorrowBook(ctx context.Context, bookID, userID, userName, userEmail string) (BorrowTransaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.bookIndex(bookID)
	if i < 0 {
		c.log.Info().Str("book_id", bookID).Msg("borrow rejected: book not found")
		return BorrowTransaction{}, ErrBookNotFound()
	}
	if c.books[i].AvailableCopies <= 0 {
		c.log.Info().Str("book_id", bookID).Msg("borrow rejected: no copies available")
		return BorrowTransaction{}, ErrNoCopiesAvailable()
	}
	if c.activeCount(userID) >= MaxActiveBorrows {
		c.log.Info().Str("user_id", userID).Msg("borrow rejected: limit reached")
		return BorrowTransaction{}, ErrBorrowLimitReached()
	}

	id, err := c.ids.New()
	if err != nil {
		return BorrowTransaction{}, err
	}
	tx := BorrowTransaction{
		ID:         id,
		UserID:     userID,
		UserName:   userName,
		UserEmail:  userEmail,
		BookID:     bookID,
		BookTitle:  c.books[i].Title,
		BorrowDate: c.clock.Now(),
		Status:     StatusBorrowed,
	}

	books := slices.Clone(c.books)
	books[i].AvailableCopies--
	txs := append(slices.Clone(c.transactions), tx)

	if err := saveJSON(ctx, c.kv, KeyBooks, books, KeyTransactions, txs); err != nil {
		return BorrowTransaction{}, err
	}
	c.books, c.transactions = books, txs

	c.log.Debug().Str("tx_id", tx.ID).Str("book_id", bookID).Str("user_id", userID).Msg("book borrowed")
	return tx, nil
}

// ReturnBook closes the transaction and gives the copy back. Calling it again
// on a returned transaction credits the copy a second time.
func (c *CatalogStore) ReturnBook(ctx context.Context, transactionID string) (BorrowTransaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ti := slices.IndexFunc(c.transactions, func(t BorrowTransaction) bool { return t.ID == transactionID })
	if ti < 0 {
		c.log.Info().Str("tx_id", transactionID).Msg("return rejected: transaction not found")
		return BorrowTransaction{}, ErrTransactionNotFound()
	}

	books := slices.Clone(c.books)
	if bi := c.bookIndex(c.transactions[ti].BookID); bi >= 0 {
		books[bi].AvailableCopies++
	}

	txs := slices.Clone(c.transactions)
	now := c.clock.Now()
	txs[ti].Status = StatusReturned
	txs[ti].ReturnDate = &now

	if err := saveJSON(ctx, c.kv, KeyBooks, books, KeyTransactions, txs); err != nil {
		return BorrowTransaction{}, err
	}
	c.books, c.transactions = books, txs

	c.log.Debug().Str("tx_id", transactionID).Str("book_id", txs[ti].BookID).Msg("book returned")
	return txs[ti], nil
}

func (c *CatalogStore) activeCount(userID string) int {
	n := 0
	for _, t := range c.transactions {
		if t.UserID == userID && t.Status == StatusBorrowed {
			n++
		}
	}
	return n
}

// ListUserBorrowedBooks returns the user's transactions still in borrowed state.
func (c *CatalogStore) ListUserBorrowedBooks(userID string) []BorrowTransaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []BorrowTransaction
	for _, t := range c.transactions {
		if t.UserID == userID && t.Status == StatusBorrowed {
			out = append(out, t)
		}
	}
	return out
}

// ListAllTransactions returns every transaction in insertion order.
func (c *CatalogStore) ListAllTransactions() []BorrowTransaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.transactions)
}

func (c *CatalogStore) GetTransaction(id string) (BorrowTransaction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := slices.IndexFunc(c.transactions, func(t BorrowTransaction) bool { return t.ID == id })
	if i < 0 {
		return BorrowTransaction{}, false
	}
	return c.transactions[i], true
}
