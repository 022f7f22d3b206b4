// Package cli implements the complykit command line tool.
package cli

import (
	"complykit/internal/config"
	"complykit/internal/localstore"
	"complykit/internal/logger"
	"complykit/internal/questionnaire"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	storePath   string
	catalogPath string
	server      string
	token       string
	noColor     bool
	verbose     bool
}

// store opens the local pending queue
func (o *globalOptions) store() (*localstore.Store, error) {
	path := o.storePath
	if path == "" {
		var err error
		if path, err = localstore.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return localstore.Open(path), nil
}

// catalog returns the built-in steps, or the file given with --catalog
func (o *globalOptions) catalog() (*questionnaire.Catalog, error) {
	if o.catalogPath == "" {
		return questionnaire.Default(), nil
	}
	return questionnaire.LoadFile(o.catalogPath)
}

func (o *globalOptions) logger() *zap.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return logger.New(level, "console")
}

// aiConfig reads AI settings from the environment and config file. The CLI
// still works offline when they are missing.
func (o *globalOptions) aiConfig() *config.AIConfig {
	cfg, err := config.Load()
	if err != nil {
		return config.DefaultAIConfig()
	}
	return &cfg.AI
}

// NewRootCommand creates and returns the root cobra command for complykit
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "complykit",
		Short: "EU AI Act risk assessment from the terminal",
		Long: `complykit walks you through the EU AI Act questionnaire, classifies
your AI system into a risk tier and keeps results locally until they
are synced to a ComplyKit server.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			color.NoColor = opts.noColor || !isatty.IsTerminal(os.Stdout.Fd())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.storePath, "store", os.Getenv("COMPLYKIT_STORE"), "path of the local pending results file")
	flags.StringVar(&opts.catalogPath, "catalog", "", "YAML step catalogue to use instead of the built-in one")
	flags.StringVar(&opts.server, "server", envOr("COMPLYKIT_SERVER", "http://localhost:8080"), "ComplyKit server URL")
	flags.StringVar(&opts.token, "token", os.Getenv("COMPLYKIT_TOKEN"), "identity token used to sync results")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "verbose logging")

	// Add subcommands
	cmd.AddCommand(NewStepsCommand(opts))
	cmd.AddCommand(NewClassifyCommand(opts))
	cmd.AddCommand(NewAssessCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewPendingCommand(opts))

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
