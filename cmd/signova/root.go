package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/signova/internal/app"
	"github.com/ayusman/signova/internal/config"
	"github.com/ayusman/signova/internal/logging"
	"github.com/ayusman/signova/internal/store"
)

// Shared CLI flags
var (
	cfgFile  string
	logLevel string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "signova",
		Short: "Signova - sign language to text and speech",
		Long: `Signova watches a camera, recognizes hand signs and builds sentences
that are shown in English or Kinyarwanda and read aloud.

Run 'signova serve' to start the web interface.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default "+config.DefaultFile+")")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newServeCmd(),
		newCaptureCmd(),
		newSamplesCmd(),
		newLabelsCmd(),
	)
	return root
}

// env is what every command needs after startup.
type env struct {
	cfg   *config.Config
	log   *logrus.Logger
	store *store.Store
}

func (e *env) Close() {
	if e.store != nil {
		e.store.Close()
	}
}

// loadEnv reads config, builds the logger and opens the store when
// withStore is set.
func loadEnv(withStore bool) (*env, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	e := &env{
		cfg: cfg,
		log: logging.New(cfg.Log.Level, cfg.Log.Format),
	}

	if withStore {
		if dir := filepath.Dir(cfg.Store.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create data directory: %w", err)
			}
		}
		st, err := store.New(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		e.store = st
	}
	return e, nil
}

func (e *env) newApp() (*app.App, error) {
	opts := []app.Option{app.WithLogger(e.log)}
	if e.store != nil {
		opts = append(opts, app.WithStore(e.store))
	}
	return app.New(e.cfg, opts...)
}
