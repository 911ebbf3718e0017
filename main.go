package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"library-portal/config"
	"library-portal/library"
	"library-portal/logging"
)

// app carries what every command needs once the root pre-run has loaded
// the configuration and opened storage.
type app struct {
	v          *viper.Viper
	configFile string

	cfg *config.AppConfig
	log zerolog.Logger
	mgr *library.LibraryManager
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run builds a fresh command tree and executes args against it. Storage is
// closed on return whatever the outcome of the command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{v: viper.New(), log: zerolog.Nop()}
	defer a.close()

	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "library-portal",
		Short:         "Library portal: accounts, catalog and circulation",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default ./library.yaml or ./config/library.yaml)")
	flags.String("db", "", "SQLite database path (storage.path)")
	flags.String("driver", "", "storage driver: sqlite or redis (storage.driver)")
	_ = a.v.BindPFlag("storage.path", flags.Lookup("db"))
	_ = a.v.BindPFlag("storage.driver", flags.Lookup("driver"))

	root.AddCommand(
		a.newRegisterCmd(),
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newWhoamiCmd(),
		a.newProfileCmd(),
		a.newBooksCmd(),
		a.newBorrowCmd(),
		a.newReturnCmd(),
		a.newBorrowedCmd(),
		a.newTransactionsCmd(),
		a.newUsersCmd(),
		a.newStatsCmd(),
		a.newDashboardCmd(),
	)
	return root
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Environment)

	mgr, err := library.NewLibraryManager(cmd.Context(), cfg, a.log)
	if err != nil {
		return fmt.Errorf("open library: %w", err)
	}
	a.mgr = mgr
	a.log.Debug().Str("command", cmd.CommandPath()).Msg("library ready")
	return nil
}

func (a *app) close() {
	if a.mgr == nil {
		return
	}
	if err := a.mgr.Close(); err != nil {
		a.log.Error().Err(err).Msg("close storage")
	}
	a.mgr = nil
}

var (
	errNotLoggedIn   = errors.New("not logged in: run `library-portal login` first")
	errAdminRequired = errors.New("this command requires an administrator")
)

// requireSession is the CLI's route guard for authenticated commands.
func (a *app) requireSession() (*library.Session, error) {
	s := a.mgr.Users.CurrentSession()
	if s == nil {
		return nil, errNotLoggedIn
	}
	return s, nil
}

func (a *app) requireAdmin() (*library.Session, error) {
	s, err := a.requireSession()
	if err != nil {
		return nil, err
	}
	if s.Role != library.RoleAdmin {
		return nil, errAdminRequired
	}
	return s, nil
}

// report prints successMsg when err is nil. Domain failures come back as
// their user-facing message; anything else is returned unchanged.
func report(cmd *cobra.Command, err error, successMsg string) error {
	res := library.ResultOf(err, successMsg)
	if res.Success {
		fmt.Fprintln(cmd.OutOrStdout(), res.Message)
		return nil
	}
	var de *library.DomainError
	if errors.As(err, &de) {
		return errors.New(res.Message)
	}
	return err
}
