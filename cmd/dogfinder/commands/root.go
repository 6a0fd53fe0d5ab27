package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"dogfinder/internal/catalog"
	"dogfinder/internal/components/chrono"
	"dogfinder/internal/components/db"
	"dogfinder/internal/components/telemetry"
	"dogfinder/internal/favorites"
	"dogfinder/internal/session"
	"dogfinder/pkg/migrations"

	"github.com/spf13/cobra"
)

const report_cli_session = "cli.session"

// app holds everything a command needs, it is built once before any command runs.
type app struct {
	cfg       Config
	tel       telemetry.API
	database  *sql.DB
	client    *catalog.Client
	session   session.Store
	favorites *favorites.Favorites
	shutdown  telemetry.Shutdown
	out       io.Writer
}

// appRef is filled in before the command runs and closed by ExecuteContext,
// which also covers commands that failed.
type appRef struct {
	app *app
}

type appKey struct{}

func getApp(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*appRef).app
}

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "dogfinder",
	Short:         "dogfinder searches the Fetch dog adoption catalog and keeps a list of favorite dogs.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		cmd.Context().Value(appKey{}).(*appRef).app = a
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Path to the json5 config file.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug information.")
}

// setupTelemetry is replaced in tests.
var setupTelemetry = telemetry.Setup

func newApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	telemetry.InitSlog(cfg.Verbose || verbose)

	shutdown, err := setupTelemetry(ctx, appName, cfg.Telemetry)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("setup telemetry: %w", err), shutdownNow(shutdown))
	}
	tel, err := telemetry.NewOtelAPI(telemetry.SlogAPI{})
	if err != nil {
		return nil, errors.Join(err, shutdownNow(shutdown))
	}

	database, err := migrations.OpenAndMigrateDB(db.Schema, cfg.Db)
	if err != nil {
		return nil, errors.Join(err, shutdownNow(shutdown))
	}

	clock := chrono.NewStandardTime()
	client, err := catalog.NewClient(catalog.ClientOptions{
		BaseUrl:         cfg.BaseUrl,
		Timeout:         cfg.timeout(),
		DetailCacheSize: cfg.DetailCacheSize,
		Clock:           clock,
	}, tel)
	if err != nil {
		return nil, errors.Join(err, database.Close(), shutdownNow(shutdown))
	}

	sessions := session.NewStore(database, clock)
	cookies, err := sessions.Load(ctx)
	if err != nil {
		tel.ReportWarning(report_cli_session, err)
	}
	client.SetCookies(cookies)

	favs := favorites.Open(ctx, favorites.NewSlotStore(database, clock), tel)

	return &app{
		cfg:       cfg,
		tel:       tel,
		database:  database,
		client:    client,
		session:   sessions,
		favorites: favs,
		shutdown:  shutdown,
		out:       out,
	}, nil
}

// shutdownNow flushes the telemetry providers, waiting at most 5 seconds.
func shutdownNow(shutdown telemetry.Shutdown) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	return shutdown(ctx)
}

func (a *app) close() error {
	return errors.Join(shutdownNow(a.shutdown), a.database.Close())
}

const sessionHint = "the session has expired or you are not logged in, run `dogfinder login --name <name> --email <email>`"

// ExecuteContext runs the command line and returns the exit code. A command
// failing because the session is no longer valid prints a hint to log in
// again.
func ExecuteContext(ctx context.Context) int {
	ref := &appRef{}
	err := rootCmd.ExecuteContext(context.WithValue(ctx, appKey{}, ref))
	if ref.app != nil {
		err = errors.Join(err, ref.app.close())
	}
	if err == nil {
		return 0
	}
	if errors.Is(err, catalog.ErrUnauthorized) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), sessionHint)
		return 1
	}
	slog.Error("command failed", "err", err.Error())
	return 1
}
