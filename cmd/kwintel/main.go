package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/studiowebux/kwintel/internal/cli"
	"github.com/studiowebux/kwintel/internal/clipboard"
	"github.com/studiowebux/kwintel/internal/clock"
	"github.com/studiowebux/kwintel/internal/config"
	"github.com/studiowebux/kwintel/internal/dataset"
	"github.com/studiowebux/kwintel/internal/executor"
	"github.com/studiowebux/kwintel/internal/keybinds"
	"github.com/studiowebux/kwintel/internal/logging"
	"github.com/studiowebux/kwintel/internal/mock"
	"github.com/studiowebux/kwintel/internal/session"
	"github.com/studiowebux/kwintel/internal/tui"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "kwintel",
	Short: "Keyword Intelligence - keyword extraction client",
	Long: `kwintel submits text or PDF documents to a keyword extraction service
and shows the extracted keywords, phrases, summary and topic.

Run without arguments to start the interactive TUI.

Examples:
  kwintel                                  # Start interactive TUI
  kwintel extract --text "..."             # Analyse text
  cat notes.txt | kwintel extract -o json  # Analyse piped text
  kwintel extract -f report.pdf --export csv
  kwintel extract -f report.pdf --query 'ml_keywords[:3]'
  kwintel ping                             # Check the service
  kwintel dataset list                     # Browse saved analyses`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Analyse text or a document file",
	Long: `Analyse text or a document file.

Input is taken from --file, then --text, then piped stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(true)
		if err != nil {
			return err
		}
		defer app.close()

		opts := cli.ExtractOptions{
			Text:         flagText,
			FilePath:     flagFile,
			Params:       paramOverrides(cmd),
			OutputFormat: flagOutput,
			Query:        flagQuery,
			Export:       flagExport,
			Copy:         flagCopy,
			Save:         flagSave,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return cli.Extract(ctx, app.env, opts)
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the extraction service is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(false)
		if err != nil {
			return err
		}
		defer app.close()
		return cli.Ping(cmd.Context(), app.env, app.client)
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in (demo gate, any non-empty credentials)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(false)
		if err != nil {
			return err
		}
		defer app.close()

		opts := cli.LoginOptions{Username: flagUsername, Password: flagPassword}
		if cli.IsInteractive() {
			opts.Prompt = cli.PromptCredentials
		}
		return cli.Login(app.env, app.sessions, opts)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(false)
		if err != nil {
			return err
		}
		defer app.close()
		return cli.Logout(app.env, app.sessions)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(false)
		if err != nil {
			return err
		}
		defer app.close()
		return cli.Whoami(app.env, app.sessions)
	},
}

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Browse the saved analyses",
}

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved analyses, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(true)
		if err != nil {
			return err
		}
		defer app.close()
		return cli.DatasetList(cmd.Context(), app.env, app.env.Dataset, listOptions())
	},
}

var datasetSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search saved analyses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(true)
		if err != nil {
			return err
		}
		defer app.close()
		return cli.DatasetSearch(cmd.Context(), app.env, app.env.Dataset, args[0], listOptions())
	},
}

var datasetShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one saved analysis (id prefixes work)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(true)
		if err != nil {
			return err
		}
		defer app.close()

		var id string
		if len(args) > 0 {
			id = args[0]
		}
		var pick cli.EntryPicker
		if cli.IsInteractive() {
			pick = cli.PickEntry
		}
		return cli.DatasetShow(cmd.Context(), app.env, app.env.Dataset, id, pick)
	},
}

var datasetExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the dataset as CSV (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(true)
		if err != nil {
			return err
		}
		defer app.close()

		var path string
		if len(args) > 0 {
			path = args[0]
		}
		return cli.DatasetExport(cmd.Context(), app.env, app.env.Dataset, path)
	},
}

var datasetClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved analysis",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(true)
		if err != nil {
			return err
		}
		defer app.close()
		return cli.DatasetClear(cmd.Context(), app.env, app.env.Dataset, flagForce)
	},
}

var datasetTopicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Count saved analyses per predicted topic",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(true)
		if err != nil {
			return err
		}
		defer app.close()
		return cli.DatasetTopics(cmd.Context(), app.env, app.env.Dataset)
	},
}

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a local stand-in extraction service",
	Long: `Run a local stand-in extraction service.

It serves the same endpoints as the real service with a deterministic
frequency-based analysis, for trying the client without the model stack.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(false)
		if err != nil {
			return err
		}
		defer app.close()

		cfg := &mock.Config{}
		if flagMockConfig != "" {
			if cfg, err = mock.LoadConfig(flagMockConfig); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("port") {
			cfg.Port = flagMockPort
		}
		if cmd.Flags().Changed("delay") {
			cfg.Delay = flagMockDelay
		}
		if cmd.Flags().Changed("fail") {
			cfg.Fail = flagMockFail
		}
		cfg.Logging = true

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return cli.Serve(ctx, app.env, cfg)
	},
}

// Flags for extract
var (
	flagText     string
	flagFile     string
	flagTopN     int
	flagNgramMin int
	flagNgramMax int
	flagOutput   string
	flagQuery    string
	flagExport   string
	flagCopy     string
	flagSave     bool
)

// Flags for login
var (
	flagUsername string
	flagPassword string
)

// Flags for dataset
var (
	flagLimit  int
	flagTopics []string
	flagFormat string
	flagForce  bool
)

// Flags for mock
var (
	flagMockConfig string
	flagMockPort   int
	flagMockDelay  int
	flagMockFail   string
)

// Global flags
var (
	flagLogLevel string
	flagAPIURL   string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Extraction service URL (overrides config)")

	extractCmd.Flags().StringVarP(&flagText, "text", "t", "", "Text to analyse")
	extractCmd.Flags().StringVarP(&flagFile, "file", "f", "", "Document file to analyse (PDF)")
	extractCmd.Flags().IntVarP(&flagTopN, "top-n", "n", 0, "Number of keywords (5-20, default from config)")
	extractCmd.Flags().IntVar(&flagNgramMin, "ng-min", 0, "Minimum n-gram size (1-3)")
	extractCmd.Flags().IntVar(&flagNgramMax, "ng-max", 0, "Maximum n-gram size (1-3)")
	extractCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")
	extractCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "JMESPath query applied to the result")
	extractCmd.Flags().StringVar(&flagExport, "export", "", "Export keywords (csv/xlsx/json/yaml)")
	extractCmd.Flags().StringVar(&flagCopy, "copy", "", "Copy to clipboard (summary/keywords)")
	extractCmd.Flags().BoolVarP(&flagSave, "save", "s", false, "Save the analysis to the dataset")
	extractCmd.MarkFlagsMutuallyExclusive("text", "file")

	loginCmd.Flags().StringVarP(&flagUsername, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&flagPassword, "password", "p", "", "Password")

	for _, c := range []*cobra.Command{datasetListCmd, datasetSearchCmd} {
		c.Flags().IntVarP(&flagLimit, "limit", "l", 0, "Maximum number of entries")
		c.Flags().StringSliceVar(&flagTopics, "topic", nil, "Only entries with these topics")
		c.Flags().StringVarP(&flagFormat, "output", "o", "table", "Output format (table/json/yaml/csv)")
	}
	datasetClearCmd.Flags().BoolVar(&flagForce, "force", false, "Do not ask for confirmation")

	mockCmd.Flags().StringVarP(&flagMockConfig, "config", "c", "", "Server config file (yaml/json)")
	mockCmd.Flags().IntVarP(&flagMockPort, "port", "p", 8000, "Port to listen on")
	mockCmd.Flags().IntVar(&flagMockDelay, "delay", 0, "Response delay in milliseconds")
	mockCmd.Flags().StringVar(&flagMockFail, "fail", "", "Fail every analysis with this detail")

	datasetCmd.AddCommand(datasetListCmd, datasetSearchCmd, datasetShowCmd, datasetExportCmd, datasetClearCmd, datasetTopicsCmd)

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(mockCmd)
}

// paramOverrides keeps only the numeric flags the user actually passed
func paramOverrides(cmd *cobra.Command) cli.ParamOverrides {
	var o cli.ParamOverrides
	if cmd.Flags().Changed("top-n") {
		o.TopN = &flagTopN
	}
	if cmd.Flags().Changed("ng-min") {
		o.NgramMin = &flagNgramMin
	}
	if cmd.Flags().Changed("ng-max") {
		o.NgramMax = &flagNgramMax
	}
	return o
}

func listOptions() cli.ListOptions {
	return cli.ListOptions{Limit: flagLimit, Topics: flagTopics, Format: flagFormat}
}

// app bundles what every command needs
type app struct {
	cfg      *config.Config
	client   *executor.Client
	sessions *session.Manager
	env      cli.Env
	closers  []io.Closer
}

func (a *app) close() {
	for _, c := range a.closers {
		c.Close()
	}
}

// setup loads config, builds the service client and, when asked, opens the dataset
func setup(withDataset bool) (*app, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load(config.ConfigDir)
	if err != nil {
		return nil, err
	}
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logger := logging.New(os.Stderr, cfg.LogLevel)
	return newApp(cfg, logger, withDataset)
}

func newApp(cfg *config.Config, logger *slog.Logger, withDataset bool) (*app, error) {
	opts, err := cfg.ClientOptions()
	if err != nil {
		return nil, err
	}
	client, err := executor.NewClient(opts)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(config.SessionFile, clock.SystemClock{})
	if err := sessions.Load(); err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	a := &app{
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		env: cli.Env{
			Config:     cfg,
			Service:    logging.NewLoggingExtractor(client, logger),
			Clipboard:  clipboard.SystemWriter{},
			Logger:     logger,
			Stdin:      os.Stdin,
			StdinPiped: !cli.IsInteractive(),
			Stdout:     os.Stdout,
			Stderr:     os.Stderr,
			Color:      cli.IsTerminal(),
		},
	}

	if withDataset {
		store, err := dataset.Open(config.DatabasePath, clock.SystemClock{})
		if err != nil {
			return nil, err
		}
		a.env.Dataset = store
		a.closers = append(a.closers, store)
	}

	return a, nil
}

// runTUI starts the interactive TUI. Logs go to a file because the TUI owns the terminal.
func runTUI(cmd *cobra.Command) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	cfg, err := config.Load(config.ConfigDir)
	if err != nil {
		return err
	}
	if flagAPIURL != "" {
		cfg.APIURL = flagAPIURL
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	logFile, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, config.FilePermissions)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.New(logFile, cfg.LogLevel)

	a, err := newApp(cfg, logger, true)
	if err != nil {
		return err
	}
	defer a.close()

	registry, err := keybinds.LoadOrDefault(keybinds.Config(cfg.Keybinds))
	if err != nil {
		return fmt.Errorf("failed to load keybinds: %w", err)
	}
	for _, w := range registry.Check() {
		logger.Warn("keybind conflict", "warning", w.String())
	}

	return tui.Run(context.Background(), tui.Options{
		Config:    cfg,
		Service:   a.env.Service,
		Pinger:    a.client,
		Sessions:  a.sessions,
		Dataset:   a.env.Dataset,
		Clipboard: clipboard.SystemWriter{},
		Keybinds:  registry,
		Logger:    logger,
	})
}
