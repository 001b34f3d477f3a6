package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lazyddb/internal/app"
	"lazyddb/internal/config"
	"lazyddb/internal/dynamo"
	"lazyddb/internal/fetch"
)

var (
	flagRegion   string
	flagEndpoint string
	flagTable    string
	flagConfig   string
	flagLogFile  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "lazyddb",
	Short: "A terminal UI for exploring DynamoDB tables",
	Long: `lazyddb is an interactive terminal explorer for DynamoDB.

It lists the tables of the configured region, scans their items page by
page as you scroll, and lets you fuzzy-filter, query by key, and drill
into single items as a collapsible tree.

Credentials and region resolve through the standard AWS chain
(environment, shared config, instance metadata).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagRegion, "region", "", "AWS region (overrides config and environment)")
	rootCmd.Flags().StringVar(&flagEndpoint, "endpoint-url", "", "custom endpoint, e.g. a DynamoDB Local address")
	rootCmd.Flags().StringVarP(&flagTable, "table", "t", "", "open this table directly at startup")
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "config file (default: config.yaml in the user config dir or cwd)")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "write logs to this file")
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "", "minimum log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		if flagConfig != "" {
			return fmt.Errorf("read config %s: %w", flagConfig, err)
		}
		fmt.Fprintf(os.Stderr, "Warning: could not load config: %v (using defaults)\n", err)
		cfg = config.GetDefaults()
	}

	// Flags win over the config file.
	if flagRegion != "" {
		cfg.AWS.Region = flagRegion
	}
	if flagEndpoint != "" {
		cfg.AWS.Endpoint = flagEndpoint
	}
	if flagLogFile != "" {
		cfg.Log.File = flagLogFile
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	log, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer closeLog()

	client, err := dynamo.NewFromConfig(ctx, cfg.AWS.Region, cfg.AWS.Endpoint, cfg.Data.PageSize)
	if err != nil {
		return fmt.Errorf("load AWS configuration: %w", err)
	}

	requests := make(chan fetch.Request, cfg.Data.RequestBuffer)
	responses := make(chan fetch.Response, cfg.Data.ResponseBuffer)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	worker := fetch.NewWorker(client, requests, responses, log.Named("fetch"))
	go worker.Run(workerCtx)

	model := app.New(cfg, client.Region(), requests, responses, log.Named("app"))
	if flagTable != "" {
		model.SetStartupTable(flagTable)
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(model, opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// newLogger builds a JSON file logger. Terminal output belongs to the TUI,
// so without a log file everything is discarded.
func newLogger(cfg config.LogConfig) (*zap.Logger, func(), error) {
	if cfg.File == "" {
		return zap.NewNop(), func() {}, nil
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(f),
		zap.NewAtomicLevelAt(level),
	)
	log := zap.New(core)

	closeLog := func() {
		_ = log.Sync()
		_ = f.Close()
	}
	return log, closeLog, nil
}
