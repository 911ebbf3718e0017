package library

import "time"

// Built-in administrator present on a fresh install.
const (
	SeedAdminEmail    = "admin@library.com"
	SeedAdminPassword = "admin123"
)

func seedAccounts(now time.Time) []Account {
	return []Account{
		{
			ID:          "1",
			Email:       SeedAdminEmail,
			Password:    SeedAdminPassword,
			FirstName:   "Admin",
			LastName:    "User",
			Role:        RoleAdmin,
			BorrowLimit: DefaultAdminBorrowLimit,
			CreatedAt:   now,
		},
	}
}

func seedBooks(now time.Time) []Book {
	return []Book{
		{
			ID:              "1",
			Title:           "The Great Gatsby",
			Author:          "F. Scott Fitzgerald",
			ISBN:            "978-0-7432-7356-5",
			Genre:           "Classic Literature",
			Description:     "A classic American novel set in the Jazz Age.",
			TotalCopies:     5,
			AvailableCopies: 5,
			AddedAt:         now,
			AddedBy:         SeedAdminEmail,
		},
		{
			ID:              "2",
			Title:           "To Kill a Mockingbird",
			Author:          "Harper Lee",
			ISBN:            "978-0-06-112008-4",
			Genre:           "Classic Literature",
			Description:     "A gripping tale of racial injustice and childhood innocence.",
			TotalCopies:     3,
			AvailableCopies: 3,
			AddedAt:         now,
			AddedBy:         SeedAdminEmail,
		},
	}
}
