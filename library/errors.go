package library

import (
	"errors"
	"fmt"
)

// DomainError is a recoverable failure of a store operation. Message is
// meant to be shown to the user as is.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const (
	ErrCodeDuplicateEmail      = "DUPLICATE_EMAIL"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeNoActiveSession     = "NO_ACTIVE_SESSION"
	ErrCodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	ErrCodeBookNotFound        = "BOOK_NOT_FOUND"
	ErrCodeNoCopiesAvailable   = "NO_COPIES_AVAILABLE"
	ErrCodeBorrowLimitReached  = "BORROW_LIMIT_REACHED"
	ErrCodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
)

func newDomainError(code, msg string) error {
	return &DomainError{Code: code, Message: msg}
}

func ErrDuplicateEmail() error {
	return newDomainError(ErrCodeDuplicateEmail, "Email already exists")
}

func ErrInvalidCredentials() error {
	return newDomainError(ErrCodeInvalidCredentials, "Invalid credentials")
}

func ErrNoActiveSession() error {
	return newDomainError(ErrCodeNoActiveSession, "No user logged in")
}

func ErrAccountNotFound() error {
	return newDomainError(ErrCodeAccountNotFound, "User not found")
}

func ErrBookNotFound() error {
	return newDomainError(ErrCodeBookNotFound, "Book not found")
}

func ErrNoCopiesAvailable() error {
	return newDomainError(ErrCodeNoCopiesAvailable, "No copies available")
}

func ErrBorrowLimitReached() error {
	return newDomainError(ErrCodeBorrowLimitReached, "Borrow limit reached")
}

func ErrTransactionNotFound() error {
	return newDomainError(ErrCodeTransactionNotFound, "Transaction not found")
}

// IsCode reports whether err is a DomainError carrying code.
func IsCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

// Result is the success/message pair shown by front ends.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ResultOf converts the outcome of a store operation into a Result.
// Domain failures keep their message; any other error is reported verbatim.
func ResultOf(err error, successMsg string) Result {
	if err == nil {
		return Result{Success: true, Message: successMsg}
	}
	var de *DomainError
	if errors.As(err, &de) {
		return Result{Success: false, Message: de.Message}
	}
	return Result{Success: false, Message: err.Error()}
}
