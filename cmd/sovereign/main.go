// Command sovereign runs the Sovereign agent: a terminal client that turns
// natural-language tasks into reviewable execution plans, and a backend
// proxy that fronts the generative API for clients without the key.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sovereignhq/sovereign/internal/auth"
	"github.com/sovereignhq/sovereign/internal/config"
	"github.com/sovereignhq/sovereign/internal/data"
	"github.com/sovereignhq/sovereign/internal/executor"
	"github.com/sovereignhq/sovereign/internal/llm"
	"github.com/sovereignhq/sovereign/internal/logging"
	"github.com/sovereignhq/sovereign/internal/orchestrator"
	"github.com/sovereignhq/sovereign/internal/payment"
	"github.com/sovereignhq/sovereign/internal/planner"
	"github.com/sovereignhq/sovereign/internal/server"
	"github.com/sovereignhq/sovereign/internal/tools"
	"github.com/sovereignhq/sovereign/internal/ui"
)

var (
	version = "0.1.0"
	cfgPath string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sovereign",
		Short: "Sovereign - describe a task, review the plan, approve it",
		Long: `Sovereign turns a natural-language request into a structured execution
plan, waits for your approval, and then runs the plan against its tool
registry, reconciling any cost against your wallet.

Start the terminal client:  sovereign
Run the backend proxy:      sovereign serve`,
		RunE: runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (default ~/.sovereign/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Sovereign v%s\n", version)
		},
	})

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgPath != "" {
		cfg, err = config.LoadFromPath(cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, cfg.EnsureDirectories()
}

// ───────────────────────────────────────────────────────────────────────────────
// TUI
// ───────────────────────────────────────────────────────────────────────────────

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// File-only logging: console lines would tear the terminal UI.
	log, closeLog, err := logging.New(logging.Options{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.File,
	})
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer closeLog()

	// Force TrueColor so themed backgrounds render consistently.
	lipgloss.SetColorProfile(termenv.TrueColor)

	store, err := data.Open(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()
	store.SetSeedBalance(cfg.Wallet.InitialBalance)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway, srv, err := buildGateway(ctx, cfg, log)
	if err != nil {
		return err
	}

	authSvc := auth.NewService(auth.NewStore(store.DB()), auth.DefaultConfig())

	registry := tools.DefaultRegistry()
	gen := planner.NewGenerator(gateway,
		planner.WithModels(cfg.Models.Primary, cfg.Models.Fallback),
		planner.WithLogger(logging.Component(log, "planner")),
	)
	agent := executor.NewAgent(gateway, registry,
		executor.WithModels(cfg.Models.Primary, cfg.Models.Fallback),
		executor.WithLogger(logging.Component(log, "executor")),
	)

	orch := orchestrator.New(gen, agent, store,
		orchestrator.WithLogger(logging.Component(log, "orchestrator")),
	)
	if srv != nil {
		// Task transitions stream to /ws subscribers of the embedded proxy.
		orch.Subscribe(srv.PublishEvent)
	}
	go orch.Run(ctx, authSvc.Subscribe())

	popup := payment.NewSimulatedPopup(payment.WithLogger(logging.Component(log, "payment")))
	backend := ui.NewAppBackend(authSvc, orch, popup)

	program := tea.NewProgram(
		ui.New(backend, logging.Component(log, "ui")),
		tea.WithAltScreen(),
	)

	log.Info().Str("version", version).Msg("starting terminal client")
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run terminal client: %w", err)
	}
	return nil
}

// buildGateway picks how generation requests reach the backend. With an API
// key configured the proxy runs in-process and is returned so the caller
// can feed it task events; otherwise the client calls the external proxy
// named in the config and the returned server is nil.
func buildGateway(ctx context.Context, cfg *config.Config, log zerolog.Logger) (llm.Gateway, *server.Server, error) {
	if cfg.Gemini.APIKey == "" {
		return llm.NewClient(cfg.Server.ProxyURL, llm.WithLogger(logging.Component(log, "llm"))), nil, nil
	}

	upstream := llm.NewGeminiUpstream(cfg.Gemini.APIKey, cfg.Gemini.Endpoint)
	srv := server.New(upstream,
		server.WithAddr(cfg.Server.Addr),
		server.WithLogger(logging.Component(log, "server")),
	)
	go func() {
		if err := srv.Start(ctx); err != nil {
			log.Error().Err(err).Msg("embedded proxy stopped")
		}
	}()

	// The in-process upstream serves the TUI directly; the embedded proxy
	// exists for external clients on the same machine.
	return upstream, srv, nil
}

// ───────────────────────────────────────────────────────────────────────────────
// SERVE
// ───────────────────────────────────────────────────────────────────────────────

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the backend proxy",
		Long: `Runs the HTTP proxy that fronts the generative API. Clients send
generation requests to POST /api/generate and subscribe to task events on
/ws; the API key never leaves this process.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Gemini.APIKey == "" {
				return fmt.Errorf("no API key configured: set gemini.api_key or SOVEREIGN_GEMINI_API_KEY")
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			log, closeLog, err := logging.New(logging.Options{
				Level:    cfg.Logging.Level,
				FilePath: cfg.Logging.File,
				Console:  true,
			})
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			defer closeLog()

			upstream := llm.NewGeminiUpstream(cfg.Gemini.APIKey, cfg.Gemini.Endpoint)
			srv := server.New(upstream,
				server.WithAddr(cfg.Server.Addr),
				server.WithLogger(logging.Component(log, "server")),
			)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

// ───────────────────────────────────────────────────────────────────────────────
// CONFIG
// ───────────────────────────────────────────────────────────────────────────────

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			redacted := *cfg
			if redacted.Gemini.APIKey != "" {
				redacted.Gemini.APIKey = "********"
			}
			out, err := yaml.Marshal(&redacted)
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Run: func(cmd *cobra.Command, args []string) {
			if cfgPath != "" {
				fmt.Println(cfgPath)
				return
			}
			home, err := os.UserHomeDir()
			if err != nil {
				fmt.Println("~/.sovereign/config.yaml")
				return
			}
			fmt.Println(home + "/.sovereign/config.yaml")
		},
	})

	return cmd
}
