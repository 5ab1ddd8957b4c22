package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	"github.com/kantor-lab/kantorfx/cmd/env"
	"github.com/kantor-lab/kantorfx/geocode"
	"github.com/kantor-lab/kantorfx/ingest"
	"github.com/kantor-lab/kantorfx/query"
	"github.com/kantor-lab/kantorfx/scrape"
	"github.com/kantor-lab/kantorfx/server"
	"github.com/kantor-lab/kantorfx/server/config"
	"github.com/kantor-lab/kantorfx/storage"
)

const (
	fetchTimeout   = time.Second * 30
	geocodeTimeout = time.Second * 10
)

// serveCfg wraps the serve configuration
type serveCfg struct {
	config *config.Config

	configPath string
}

// NewServeCmd creates the serve subcommand
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve <subcommand> [flags]",
		LongHelp:   "Serves the kantorfx backend",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}

	cmd.Subcommands = []*ffcli.Command{
		newServeSQLCmd(cfg),
		newServeSQLiteCmd(cfg),
		newServeMemoryCmd(cfg),
	}

	return cmd
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the server",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)
}

// loadConfig reads the TOML configuration, if a path was given
func (c *serveCfg) loadConfig() error {
	if c.configPath == "" {
		return nil
	}

	serverCfg, err := config.Read(c.configPath)
	if err != nil {
		return fmt.Errorf("unable to read server config, %w", err)
	}

	c.config = serverCfg

	return nil
}

// run wires the full service around the given store and blocks until
// shut down: source registration, a synchronous first refresh pass,
// then the HTTP server and the refresh orchestrator side by side
func (c *serveCfg) run(ctx context.Context, store storage.Storage, logger *slog.Logger) error {
	cfg := c.config

	// Page parser, with the configured smallest-unit corrections
	parser := scrape.NewParser(
		scrape.WithLogger(logger),
		scrape.WithUnitDivisors(cfg.UnitDivisors),
	)

	// Geocoder
	geocoderURL := cfg.GeocoderURL
	if geocoderURL == "" {
		geocoderURL = geocode.DefaultBaseURL
	}

	geocoder := geocode.NewNominatim(geocoderURL, geocodeTimeout)

	// Refresh orchestrator
	orchestrator := ingest.New(store, geocoder, ingest.WithLogger(logger))

	sources := cfg.Sources
	if len(sources) == 0 {
		sources = defaultSources()
	}

	for _, src := range sources {
		source := scrape.NewSource(src.Name, src.URL, fetchTimeout, parser)

		if err := orchestrator.Register(source); err != nil {
			return fmt.Errorf("unable to register source: %w", err)
		}
	}

	// Run the first refresh pass synchronously, so the store is
	// populated (or at least attempted) before queries are served
	orchestrator.RunPending(ctx)

	// Create the server instance
	s, err := server.New(
		query.New(store),
		orchestrator,
		server.WithLogger(logger),
		server.WithConfig(cfg),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	// Start the refresh orchestrator
	group.Go(func() error {
		return orchestrator.Start(gCtx)
	})

	return group.Wait()
}
