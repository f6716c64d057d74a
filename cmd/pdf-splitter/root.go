package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-splitter/internal/config"
	"github.com/Epistemic-Technology/pdf-splitter/internal/logger"
	"github.com/Epistemic-Technology/pdf-splitter/internal/operations"
	"github.com/Epistemic-Technology/pdf-splitter/internal/pdf"
	"github.com/Epistemic-Technology/pdf-splitter/internal/storage"
)

// app holds what every command needs once flags are parsed
type app struct {
	configPath string
	cfg        config.Config
	log        logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "pdf-splitter",
		Short: "Split PDFs into single-page PDFs",
		Long: `pdf-splitter splits a PDF into one PDF per page, named <stem>_Page_<n>.pdf.

Sources and destinations are either local paths or Azure Blob Storage
containers. The serve command exposes the HTTP and Event Grid entry points,
mcp exposes the same pipeline as an MCP tool over stdio, and split runs a
single request from the command line.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.pdf-splitter/config.toml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-output", "", "log output: stderr, stdout or file")
	flags.String("log-format", "", "log format: text or json")

	rootCmd.AddCommand(newServeCmd(a), newMCPCmd(a), newSplitCmd(a))
	return rootCmd
}

// init loads the configuration, applies flag overrides and builds the logger
func (a *app) init(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	overrides := map[string]*string{
		"log-level":                   &cfg.Log.Level,
		"log-output":                  &cfg.Log.Output,
		"log-format":                  &cfg.Log.Format,
		"addr":                        &cfg.Server.Addr,
		"inbox-container":             &cfg.Storage.InboxContainer,
		"event-destination-container": &cfg.Storage.DestinationContainer,
	}
	for name, target := range overrides {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*target = f.Value.String()
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	a.log = log
	return nil
}

// objectStore connects to blob storage, or returns nil when no connection
// string is configured
func (a *app) objectStore() (storage.ObjectStore, error) {
	if !a.cfg.StorageConfigured() {
		a.log.Warn("no storage connection string configured; storage requests will fail")
		return nil, nil
	}
	store, err := storage.NewAzureBlobStore(a.cfg.Storage.ConnectionString)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func (a *app) service(store storage.ObjectStore) *operations.Service {
	return operations.NewService(operations.Options{
		FS:             storage.NewLocalFS(),
		Store:          store,
		Splitter:       pdf.NewSplitter(),
		EventContainer: a.cfg.Storage.DestinationContainer,
		Log:            a.log,
	})
}
