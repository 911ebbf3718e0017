package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"library-portal/config"
	"library-portal/library"
	"library-portal/logging"
)

// catalogFile is the YAML layout read by the importer.
type catalogFile struct {
	AddedBy string        `yaml:"addedBy"`
	Books   []catalogBook `yaml:"books"`
}

type catalogBook struct {
	Title       string `yaml:"title"`
	Author      string `yaml:"author"`
	ISBN        string `yaml:"isbn"`
	Genre       string `yaml:"genre"`
	Description string `yaml:"description"`
	Copies      int    `yaml:"copies"`
}

// parseCatalog decodes a catalog and turns each entry into a BookInput.
// Copies defaults to 1; entries without a title or author are rejected.
func parseCatalog(r io.Reader) ([]library.BookInput, error) {
	var cf catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	addedBy := cf.AddedBy
	if addedBy == "" {
		addedBy = library.SeedAdminEmail
	}

	inputs := make([]library.BookInput, 0, len(cf.Books))
	for i, b := range cf.Books {
		if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
			return nil, fmt.Errorf("book #%d: title and author are required", i+1)
		}
		copies := b.Copies
		if copies == 0 {
			copies = 1
		}
		if copies < 0 {
			return nil, fmt.Errorf("book #%d (%s): copies must be positive", i+1, b.Title)
		}
		inputs = append(inputs, library.BookInput{
			Title:       b.Title,
			Author:      b.Author,
			ISBN:        b.ISBN,
			Genre:       b.Genre,
			Description: b.Description,
			TotalCopies: copies,
			AddedBy:     addedBy,
		})
	}
	return inputs, nil
}

// removeSQLiteFiles deletes a database file and its WAL companions.
func removeSQLiteFiles(w io.Writer, path string) {
	for _, file := range []string{path, path + "-shm", path + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(w, "Warning: Could not remove %s: %v\n", file, err)
		}
	}
}

// importBooks adds every input to the catalog and reports per-book progress.
func importBooks(ctx context.Context, w io.Writer, catalog *library.CatalogStore, inputs []library.BookInput) (ok, failed int) {
	for _, in := range inputs {
		fmt.Fprintf(w, "Importing: %s by %s... ", in.Title, in.Author)
		book, err := catalog.AddBook(ctx, in)
		if err != nil {
			fmt.Fprintf(w, "ERROR - %v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(w, "SUCCESS (ID: %s)\n", book.ID)
		ok++
	}
	return ok, failed
}

func newImportCmd(v *viper.Viper) *cobra.Command {
	var configFile, file string
	var reset bool

	cmd := &cobra.Command{
		Use:          "import_books",
		Short:        "Load books from a YAML catalog into the library",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			log := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Environment)
			w := cmd.OutOrStdout()

			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer f.Close()
			inputs, err := parseCatalog(f)
			if err != nil {
				return err
			}

			if reset && cfg.Storage.Driver == config.DriverSQLite {
				fmt.Fprintln(w, "Cleaning up existing database files...")
				removeSQLiteFiles(w, cfg.Storage.Path)
			}

			mgr, err := library.NewLibraryManager(cmd.Context(), cfg, log)
			if err != nil {
				return fmt.Errorf("open library: %w", err)
			}
			defer mgr.Close()

			fmt.Fprintf(w, "Importing %d book(s) from %s...\n", len(inputs), file)
			ok, failed := importBooks(cmd.Context(), w, mgr.Catalog, inputs)

			fmt.Fprintf(w, "\nImport complete!\n")
			fmt.Fprintf(w, "Successfully imported: %d books\n", ok)
			fmt.Fprintf(w, "Errors: %d\n", failed)
			if ok > 0 {
				fmt.Fprintln(w, "\nCatalog:")
				fmt.Fprintf(w, "%-28s %-50s %-30s\n", "ID", "Title", "Author")
				fmt.Fprintln(w, strings.Repeat("-", 110))
				for _, b := range mgr.Catalog.ListBooks() {
					fmt.Fprintf(w, "%-28s %-50s %-30s\n", b.ID, truncateString(b.Title, 50), truncateString(b.Author, 30))
				}
			}
			log.Info().Int("imported", ok).Int("failed", failed).Msg("import finished")
			if failed > 0 {
				return fmt.Errorf("%d book(s) failed to import", failed)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file")
	flags.StringVar(&file, "file", "cmd/import_books/catalog.yaml", "YAML catalog to import")
	flags.BoolVar(&reset, "reset", false, "delete the SQLite database before importing")
	flags.String("db", "", "SQLite database path (storage.path)")
	_ = v.BindPFlag("storage.path", flags.Lookup("db"))
	return cmd
}

func main() {
	if err := newImportCmd(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
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
