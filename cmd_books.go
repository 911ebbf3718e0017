package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"library-portal/library"
)

func (a *app) newBooksCmd() *cobra.Command {
	books := &cobra.Command{
		Use:   "books",
		Short: "Browse and manage the catalog",
	}
	books.AddCommand(
		a.newBooksListCmd(),
		a.newBooksSearchCmd(),
		a.newBooksGenresCmd(),
		a.newBooksAddCmd(),
		a.newBooksUpdateCmd(),
	)
	return books
}

func (a *app) newBooksListCmd() *cobra.Command {
	var filter library.BookFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			printBooks(cmd.OutOrStdout(), library.FilterBooks(a.mgr.Catalog.ListBooks(), filter))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Genre, "genre", "", "only this genre")
	cmd.Flags().BoolVar(&filter.AvailableOnly, "available", false, "only books with copies available")
	return cmd
}

func (a *app) newBooksSearchCmd() *cobra.Command {
	var filter library.BookFilter
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search title, author, genre and ISBN",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter.Term = strings.Join(args, " ")
			found := library.FilterBooks(a.mgr.Catalog.ListBooks(), filter)
			if len(found) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Found %d book(s) matching '%s':\n", len(found), filter.Term)
			}
			printBooks(cmd.OutOrStdout(), found)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Genre, "genre", "", "only this genre")
	cmd.Flags().BoolVar(&filter.AvailableOnly, "available", false, "only books with copies available")
	return cmd
}

func (a *app) newBooksGenresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the genres in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, g := range library.Genres(a.mgr.Catalog.ListBooks()) {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}
}

func (a *app) newBooksAddCmd() *cobra.Command {
	var in library.BookInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.requireAdmin()
			if err != nil {
				return err
			}
			if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" {
				return fmt.Errorf("--title and --author are required")
			}
			if in.TotalCopies < 1 {
				return fmt.Errorf("--copies must be at least 1")
			}
			in.AddedBy = s.Email

			book, err := a.mgr.Catalog.AddBook(cmd.Context(), in)
			if err := report(cmd, err, "Book added successfully"); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Book ID: %s\n", book.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "title")
	f.StringVar(&in.Author, "author", "", "author")
	f.StringVar(&in.ISBN, "isbn", "", "ISBN")
	f.StringVar(&in.Genre, "genre", "", "genre")
	f.StringVar(&in.Description, "description", "", "short description")
	f.IntVar(&in.TotalCopies, "copies", 1, "number of copies")
	return cmd
}

func (a *app) newBooksUpdateCmd() *cobra.Command {
	var (
		title, author, isbn, genre, description string
		total, available                        int
	)
	cmd := &cobra.Command{
		Use:   "update <book-id>",
		Short: "Change a book's details (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireAdmin(); err != nil {
				return err
			}
			var upd library.BookUpdate
			f := cmd.Flags()
			if f.Changed("title") {
				upd.Title = &title
			}
			if f.Changed("author") {
				upd.Author = &author
			}
			if f.Changed("isbn") {
				upd.ISBN = &isbn
			}
			if f.Changed("genre") {
				upd.Genre = &genre
			}
			if f.Changed("description") {
				upd.Description = &description
			}
			if f.Changed("copies") {
				upd.TotalCopies = &total
			}
			if f.Changed("available") {
				upd.AvailableCopies = &available
			}
			if upd == (library.BookUpdate{}) {
				return fmt.Errorf("nothing to update")
			}

			_, err := a.mgr.Catalog.UpdateBook(cmd.Context(), args[0], upd)
			return report(cmd, err, "Book updated successfully")
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVar(&author, "author", "", "new author")
	f.StringVar(&isbn, "isbn", "", "new ISBN")
	f.StringVar(&genre, "genre", "", "new genre")
	f.StringVar(&description, "description", "", "new description")
	f.IntVar(&total, "copies", 0, "new total number of copies")
	f.IntVar(&available, "available", 0, "new number of available copies")
	return cmd
}
