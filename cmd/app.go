package cmd

import (
	"context"
	"encoding/json"
	"io"

	"gdpr-obfuscator/internal/audit"
	"gdpr-obfuscator/internal/obfuscator"
	"gdpr-obfuscator/internal/storage"

	"github.com/spf13/viper"
)

// app holds what every command builds from the configuration.
type app struct {
	cfg      *Config
	store    storage.Store
	recorder *audit.SQLRecorder
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := LoadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.NewS3Store(ctx, cfg.Storage, Log)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, store: store}
	if cfg.Audit.Enabled {
		r, err := audit.Open(ctx, cfg.Audit)
		if err != nil {
			return nil, err
		}
		a.recorder = r
		Log.WithField("driver", cfg.Audit.Driver).Debug("audit trail enabled")
	}
	return a, nil
}

func (a *app) pipeline() (*obfuscator.Pipeline, error) {
	engine, err := a.cfg.Masking.Engine()
	if err != nil {
		return nil, err
	}

	opts := []obfuscator.Option{
		obfuscator.WithEngine(engine),
		obfuscator.WithDestination(a.cfg.Output),
		obfuscator.WithScratchDir(a.cfg.Scratch.Dir),
		obfuscator.WithLogger(Log),
	}
	if a.recorder != nil {
		opts = append(opts, obfuscator.WithRecorder(a.recorder))
	}
	return obfuscator.New(a.store, opts...), nil
}

func (a *app) Close() {
	if a.recorder == nil {
		return
	}
	if err := a.recorder.Close(); err != nil {
		Log.WithError(err).Warn("failed to close audit db")
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
