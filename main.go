package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/miosa/lingo-tui/app"
	"github.com/miosa/lingo-tui/chat"
	"github.com/miosa/lingo-tui/client"
	"github.com/miosa/lingo-tui/config"
	"github.com/miosa/lingo-tui/logging"
	"github.com/miosa/lingo-tui/style"
	"github.com/miosa/lingo-tui/telemetry"
)

var version = "dev"

type options struct {
	url       string
	profile   string
	dev       bool
	noColor   bool
	logLevel  string
	telemetry bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lingo: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "lingo",
		Short:         "Terminal chat with an English learning tutor",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.url, "url", "", "Backend base URL (overrides "+config.EnvURL+" and config file)")
	f.StringVar(&opts.profile, "profile", "", "Named profile for state isolation (~/.lingo/profiles/<name>)")
	f.BoolVar(&opts.dev, "dev", false, "Dev mode (alias for --profile dev, backend on "+config.DevBackendURL+")")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable ANSI colors")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	f.BoolVar(&opts.telemetry, "telemetry", false, "Write traces and metrics under the profile log directory")
	cmd.SetVersionTemplate("lingo {{.Version}}\n")
	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, opts options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	profile := opts.profile
	if opts.dev && profile == "" {
		profile = "dev"
	}
	dir, err := config.ProfileDir(profile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create profile directory")
	}

	cfg := config.Load(dir)
	if opts.dev && cfg.BackendURL == config.DefaultBackendURL {
		cfg.BackendURL = config.DevBackendURL
	}
	if cmd.Flags().Changed("url") {
		cfg.BackendURL = opts.url
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if opts.telemetry {
		cfg.Telemetry = true
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); os.IsNotExist(err) {
		// leave a template the user can edit
		_ = config.Save(dir, config.Defaults())
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logDir := logging.Dir(dir)
	log, logFile, err := logging.New(logDir, level)
	if err != nil {
		return err
	}
	defer logFile.Close()

	tel := telemetry.Disabled()
	if cfg.Telemetry {
		if tel, err = telemetry.Init(ctx, logDir, version); err != nil {
			return err
		}
	}
	defer shutdownTelemetry(tel, log)

	if cfg.Theme != "" && !style.SetTheme(cfg.Theme) {
		log.Warn().Str("theme", cfg.Theme).Msg("unknown theme, using default")
	}

	backend := client.New(cfg.BackendURL)
	backend.Endpoints = cfg.Endpoints.ClientEndpoints()

	session := chat.NewSession()
	bridge := app.NewBridge()
	boot := chat.NewBootstrapper(backend, session, bridge, log)
	orch := chat.New(backend, session, chat.NewProgress(), bridge,
		chat.WithLogger(log),
		chat.WithTracer(tel.Tracer),
		chat.WithMeter(tel.Meter),
	)
	defer orch.Close()

	log.Info().
		Str("version", version).
		Str("backend", cfg.BackendURL).
		Str("profile", profile).
		Msg("starting")

	m := app.New(app.Deps{
		Chat:     orch,
		Boot:     boot,
		Session:  session,
		Backend:  backend,
		Log:      log,
		Version:  version,
		BaseURL:  cfg.BackendURL,
		WordWrap: cfg.WordWrap,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	bridge.Attach(p)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return errors.Wrap(err, "run")
	}
	return nil
}

func shutdownTelemetry(tel *telemetry.Providers, log zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("telemetry shutdown")
	}
}
