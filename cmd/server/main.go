package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"volunteerconnect/internal/adapters/email"
	web "volunteerconnect/internal/adapters/http"
	"volunteerconnect/internal/adapters/http/assets"
	"volunteerconnect/internal/adapters/http/perf"
	"volunteerconnect/internal/adapters/storage"
	"volunteerconnect/internal/adapters/storage/kv"
	"volunteerconnect/internal/application/projections"
	"volunteerconnect/internal/config"
	"volunteerconnect/internal/domain/opportunity"
	"volunteerconnect/internal/router"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// CLI is the command-line interface for the Volunteer Connect server.
type CLI struct {
	Version  kong.VersionFlag `help:"Show version." short:"V"`
	Config   string           `help:"Path to a YAML config file." env:"VC_CONFIG" type:"path"`
	Serve    ServeCmd         `cmd:"" default:"1" help:"Serve the site."`
	Calendar CalendarCmd      `cmd:"" help:"Print the opportunities calendar for a month."`
	Env      EnvCmd           `cmd:"" help:"List the environment variables the server reads."`
}

// ServeCmd runs the HTTP server until interrupted.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides config)."`
}

// Run starts the server.
func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	if s.Addr != "" {
		cfg.Addr = s.Addr
	}
	slog.SetDefault(slog.New(cfg.Log.Handler(os.Stderr)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg)
}

// CalendarCmd prints a month grid of the seeded opportunities.
type CalendarCmd struct {
	Month string   `arg:"" optional:"" help:"Month to show as YYYY-MM; defaults to the current month."`
	Hide  []string `help:"Opportunity types to hide." sep:","`
}

// Run prints the calendar.
func (c *CalendarCmd) Run() error {
	catalog, err := seedCatalog(time.Local)
	if err != nil {
		return fmt.Errorf("calendar: %w", err)
	}
	return c.run(os.Stdout, catalog, time.Now())
}

func (c *CalendarCmd) run(w io.Writer, catalog *opportunity.Catalog, now time.Time) error {
	if c.Month != "" {
		if _, err := time.Parse(projections.MonthLayout, c.Month); err != nil {
			return fmt.Errorf("calendar: month %q: want YYYY-MM", c.Month)
		}
	}
	month := projections.QueryGetCalendarMonth(
		projections.GetCalendarMonthQuery{Hash: "#" + c.Month, Hidden: c.Hide, Now: now},
		projections.GetCalendarMonthDeps{Catalog: catalog},
	)
	return printMonth(w, month)
}

// EnvCmd prints the config reference.
type EnvCmd struct{}

// Run prints every VC_* variable with its default.
func (EnvCmd) Run() error {
	fmt.Println(config.Usage())
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("volunteerconnect"),
		kong.Description("Volunteer Connect site server."),
		kong.Vars{"version": version},
		kong.Bind(&cli),
	)
	if err := ctx.Run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, storage.DefaultSlowQuery)

	loc := time.Local
	catalog, err := seedCatalog(loc)
	if err != nil {
		return fmt.Errorf("seed opportunities: %w", err)
	}

	csrfKey, err := web.NewCSRFKey(cfg.HTTP.CSRFKey)
	if err != nil {
		return fmt.Errorf("csrf key: %w", err)
	}

	opts := web.Options{
		Site: assets.Site,
		LocalStore: func(deviceID string) kv.Store {
			return kv.NewSQLiteStore(timedDB, deviceID)
		},
		Catalog:        catalog,
		Sender:         newSender(cfg),
		Inbox:          cfg.Email.Inbox,
		Collector:      collector,
		CSRFKey:        csrfKey,
		SecureCookies:  cfg.HTTP.SecureCookies,
		TrustedOrigins: cfg.HTTP.TrustedOrigins,
		RateLimit:      cfg.HTTP.RateLimit,
		SlowRequest:    cfg.HTTP.SlowRequest,
		SessionTimeout: cfg.SessionTimeout,
		TabTTL:         cfg.TabTTL,
		Location:       loc,
	}

	if cfg.AssetRoot != "" {
		opts.Fetcher = router.NewHTTPFetcher(&http.Client{Timeout: 10 * time.Second}, cfg.AssetRoot)
		slog.Info("asset_root", "url", cfg.AssetRoot)
	}

	if cfg.Redis.Addr != "" {
		client, err := kv.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer client.Close()
		opts.SessionStore = redisSessions(client, cfg.Redis.TTL)
		slog.Info("session_store", "backend", "redis", "addr", cfg.Redis.Addr)
	} else {
		slog.Info("session_store", "backend", "memory")
	}

	app, err := web.New(opts)
	if err != nil {
		return fmt.Errorf("build site: %w", err)
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      app.Handler(ctx),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start",
			"version", version,
			"addr", cfg.Addr,
			"env", cfg.Env,
			"schema", storage.LatestSchemaVersion(),
			"opportunities", catalog.Len(),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openDB opens the local-storage database with WAL mode and a busy timeout.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	if err := storage.MigrateDB(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func seedCatalog(loc *time.Location) (*opportunity.Catalog, error) {
	data, err := fs.ReadFile(assets.Site, assets.OpportunitiesPath)
	if err != nil {
		return nil, err
	}
	catalog := opportunity.NewCatalog()
	if _, err := opportunity.LoadYAML(catalog, data, loc); err != nil {
		return nil, err
	}
	return catalog, nil
}

func newSender(cfg *config.Config) email.Sender {
	if cfg.Email.ResendKey != "" {
		slog.Info("email_sender", "backend", "resend", "from", cfg.Email.From)
		return email.NewResendSender(cfg.Email.ResendKey, cfg.Email.From)
	}
	if cfg.IsProduction() {
		slog.Warn("email_sender", "backend", "noop", "detail", "VC_RESEND_KEY is not set; email delivery is disabled")
	} else {
		slog.Info("email_sender", "backend", "noop")
	}
	return email.NewNoopSender()
}

func redisSessions(client *redis.Client, ttl time.Duration) func(string) kv.Store {
	return func(tabID string) kv.Store {
		return kv.NewRedisStore(client, tabID, ttl)
	}
}

// printMonth writes the grid with one column per weekday. Each day lists the
// initials of its visible opportunities' types, followed by a legend.
func printMonth(w io.Writer, m projections.CalendarMonth) error {
	fmt.Fprintln(w, m.Label)
	tw := tabwriter.NewWriter(w, 4, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Sun\tMon\tTue\tWed\tThu\tFri\tSat\t")
	var listed []string
	for _, row := range m.Rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if !cell.Active {
				continue
			}
			var marks strings.Builder
			for _, p := range cell.Placements {
				if !p.Visible {
					continue
				}
				marks.WriteByte(p.Opportunity.Type.Name[0])
				listed = append(listed, fmt.Sprintf("%2d  %-10s  %s", cell.Day, p.Opportunity.Type.Name, p.Opportunity.Title))
			}
			cells[i] = fmt.Sprintf("%d%s", cell.Day, marks.String())
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(listed) == 0 {
		fmt.Fprintln(w, "\nNo opportunities.")
		return nil
	}
	fmt.Fprintln(w)
	for _, line := range listed {
		fmt.Fprintln(w, line)
	}
	return nil
}
