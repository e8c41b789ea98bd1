// app/app.go
package app

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dalemusser/marketplace-init/config"
	"github.com/dalemusser/marketplace-init/logging"
)

// Hooks defines the integration points a command provides so Run can drive
// it through the standard startup sequence.
type Hooks[C any, D any] struct {
	// Name is used only for logging/diagnostics.
	Name string

	// LoadConfig must return both the core config and the app-specific
	// config. It typically calls config.Load internally.
	LoadConfig func(logger *zap.Logger) (*config.CoreConfig, C, error)

	// ConnectDB connects to the database the command works on. It should
	// respect core.DBConnectTimeout for its own timeouts.
	ConnectDB func(ctx context.Context, core *config.CoreConfig, appCfg C, logger *zap.Logger) (D, error)

	// CloseDB releases what ConnectDB opened. It may be nil.
	CloseDB func(ctx context.Context, db D, logger *zap.Logger) error

	// Task is the command's work. It runs under core.IndexBootTimeout.
	Task func(ctx context.Context, core *config.CoreConfig, appCfg C, db D, logger *zap.Logger) error
}

// closeTimeout bounds disconnecting after the task, which should never hang
// the process on exit.
const closeTimeout = 5 * time.Second

// Run executes the standard startup sequence for a run-to-completion command:
//
//  1. Bootstrap logger
//  2. Load core + app config (Hooks.LoadConfig)
//  3. Build final logger based on core config
//  4. Wire shutdown signals to a context
//  5. Connect DB (Hooks.ConnectDB)
//  6. Run the task under IndexBootTimeout (Hooks.Task)
//  7. Close DB (Hooks.CloseDB, if provided)
//
// The first error is returned; nothing is retried.
func Run[C any, D any](ctx context.Context, hooks Hooks[C, D]) error {
	if hooks.LoadConfig == nil || hooks.ConnectDB == nil || hooks.Task == nil {
		return errors.New("app: LoadConfig, ConnectDB and Task hooks are required")
	}

	// 1) Bootstrap logger for early startup
	bootstrap := logging.BootstrapLogger()
	defer func() { _ = bootstrap.Sync() }()

	// 2) Load config (core + app-specific)
	coreCfg, appCfg, err := hooks.LoadConfig(bootstrap)
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			bootstrap.Error("config load failed", zap.Error(err))
		}
		return err
	}

	// 3) Build final logger
	logger, err := logging.BuildLogger(coreCfg.LogLevel, coreCfg.Env)
	if err != nil {
		bootstrap.Error("logger build failed", zap.Error(err))
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger.Debug("config loaded", zap.String("app", hooks.Name), zap.String("core", coreCfg.Dump()))

	// 4) Wire shutdown signals → context
	ctx, cancel := WithShutdownSignals(ctx, logger)
	defer cancel()

	// 5) Connect DB
	db, err := hooks.ConnectDB(ctx, coreCfg, appCfg, logger)
	if err != nil {
		logger.Error("DB connect failed", zap.Error(err))
		return err
	}
	if hooks.CloseDB != nil {
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), closeTimeout)
			defer closeCancel()
			if cerr := hooks.CloseDB(closeCtx, db, logger); cerr != nil {
				logger.Warn("DB close failed", zap.Error(cerr))
			}
		}()
	}

	// 6) Task
	taskCtx, taskCancel := context.WithTimeout(ctx, coreCfg.IndexBootTimeout)
	defer taskCancel()

	if err := hooks.Task(taskCtx, coreCfg, appCfg, db, logger); err != nil {
		logger.Error(hooks.Name+" failed", zap.Error(err))
		return err
	}
	logger.Debug(hooks.Name + " finished")
	return nil
}
