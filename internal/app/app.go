// Package app wires the pieces every subcommand needs: resolved
// configuration, a Graph client and a logger. Logs go to stderr; stdout is
// reserved for each command's JSON document.
package app

import (
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"github.com/uthapjhojho/graphmail/internal/config"
	"github.com/uthapjhojho/graphmail/internal/platform/graph"
	"github.com/uthapjhojho/graphmail/internal/settings"
)

// Env holds the per-invocation dependencies.
type Env struct {
	Config *config.Config
	Client *graph.Client
	Logger *zap.SugaredLogger
}

// Setup resolves configuration (environment first, settings store as
// fallback) and builds the Graph client. An unreadable settings store is not
// fatal; the environment alone may be enough.
func Setup(verbose bool) (*Env, error) {
	logger, err := NewLogger(verbose)
	if err != nil {
		return nil, err
	}

	store, err := settings.NewStore()
	if err != nil {
		logger.Warnw("settings store unavailable, using environment only", "err", err)
		store = nil
	}

	cfg, err := config.Load(store)
	if err != nil {
		return nil, err
	}

	return &Env{
		Config: cfg,
		Client: graph.NewClient(cfg, logger),
		Logger: logger,
	}, nil
}

// NewLogger builds the stderr logger. Default level is warn so normal runs
// emit nothing but the JSON document; verbose lowers it to debug.
func NewLogger(verbose bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Emit writes v as the command's JSON document on stdout.
func Emit(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// EmitError reports a failure as a JSON document. The caller still decides
// the exit code.
func EmitError(err error) {
	_ = Emit(map[string]string{"error": err.Error()})
}
