package library

import "time"

// Role distinguishes library staff from regular borrowers.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Default per-account borrow limits, applied at registration.
const (
	DefaultUserBorrowLimit  = 6
	DefaultAdminBorrowLimit = 0
)

// DefaultBorrowLimit returns the borrow limit a new account of role r starts with.
func DefaultBorrowLimit(r Role) int {
	if r == RoleUser {
		return DefaultUserBorrowLimit
	}
	return DefaultAdminBorrowLimit
}

// Account is a registered login identity. The password is stored as entered.
type Account struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Password    string    `json:"password"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Role        Role      `json:"role"`
	BorrowLimit int       `json:"borrowLimit"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FullName is the display name used for transaction snapshots.
func (a Account) FullName() string { return a.FirstName + " " + a.LastName }

// Session is the public view of the logged-in account.
type Session struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Role          Role   `json:"role"`
	BorrowLimit   int    `json:"borrowLimit"`
	BorrowedBooks int    `json:"borrowedBooks"`
}

func (s Session) FullName() string { return s.FirstName + " " + s.LastName }

// Book represents a catalog entry and its copy availability.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Genre           string    `json:"genre"`
	Description     string    `json:"description"`
	TotalCopies     int       `json:"totalCopies"`
	AvailableCopies int       `json:"availableCopies"`
	AddedAt         time.Time `json:"addedAt"`
	AddedBy         string    `json:"addedBy"`
}

// TxStatus is the state of a borrow transaction.
type TxStatus string

const (
	StatusBorrowed TxStatus = "borrowed"
	StatusReturned TxStatus = "returned"
)

// BorrowTransaction records one borrow event and its eventual return.
// UserName and BookTitle are snapshots taken when the book was borrowed.
type BorrowTransaction struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userId"`
	UserName   string     `json:"userName"`
	UserEmail  string     `json:"userEmail"`
	BookID     string     `json:"bookId"`
	BookTitle  string     `json:"bookTitle"`
	BorrowDate time.Time  `json:"borrowDate"`
	ReturnDate *time.Time `json:"returnDate,omitempty"`
	Status     TxStatus   `json:"status"`
}

// Persisted storage keys.
const (
	KeyUsers        = "users"
	KeyCurrentUser  = "currentUser"
	KeyBooks        = "books"
	KeyTransactions = "transactions"
)
