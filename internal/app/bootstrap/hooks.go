package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dalemusser/marketplace-init/app"
	"github.com/dalemusser/marketplace-init/config"
	"github.com/dalemusser/marketplace-init/internal/initializer"
	"github.com/dalemusser/marketplace-init/internal/schema"
	"github.com/dalemusser/marketplace-init/metrics"
)

// ErrVerifyFailed is returned by the verify task when any check fails.
var ErrVerifyFailed = errors.New("verification failed")

// InitHooks wires the init command: create collections and indexes, then
// print the confirmation on out.
func InitHooks(fs *pflag.FlagSet, args []string, out io.Writer) app.Hooks[AppConfig, DBDeps] {
	return app.Hooks[AppConfig, DBDeps]{
		Name:       "init",
		LoadConfig: LoadConfig(fs, args),
		ConnectDB:  ConnectDB,
		CloseDB:    CloseDB,
		Task: func(ctx context.Context, core *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
			return runInit(ctx, core, appCfg, deps.Target, logger, out)
		},
	}
}

// VerifyHooks wires the verify command: check the database against the plan
// and print the report on out.
func VerifyHooks(fs *pflag.FlagSet, args []string, out io.Writer) app.Hooks[AppConfig, DBDeps] {
	return app.Hooks[AppConfig, DBDeps]{
		Name:       "verify",
		LoadConfig: LoadConfig(fs, args),
		ConnectDB:  ConnectDB,
		CloseDB:    CloseDB,
		Task: func(ctx context.Context, core *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
			return runVerify(ctx, core, appCfg, deps.Target, logger, out)
		},
	}
}

func runInit(ctx context.Context, core *config.CoreConfig, appCfg AppConfig, target initializer.Target, logger *zap.Logger, out io.Writer) error {
	start := time.Now()
	job := metrics.NewJob("init", appCfg.MongoDatabase)

	res, err := initializer.New(target, schema.Marketplace(appCfg.MongoDatabase), logger, out).Run(ctx)

	job.CollectionsCreated(len(res.CollectionsCreated))
	job.CollectionsExisting(len(res.CollectionsExisting))
	for _, ix := range res.Indexes {
		coll, _, _ := strings.Cut(ix, ".")
		job.IndexEnsured(coll)
	}
	job.Finish(time.Since(start), err)
	writeMetrics(job, core, logger)

	if err != nil {
		return err
	}
	logger.Info("database initialized",
		zap.String("database", res.Database),
		zap.Strings("created", res.CollectionsCreated),
		zap.Strings("existing", res.CollectionsExisting),
		zap.Int("indexes", len(res.Indexes)),
		zap.Duration("took", res.Duration),
	)
	return nil
}

func runVerify(ctx context.Context, core *config.CoreConfig, appCfg AppConfig, target initializer.Target, logger *zap.Logger, out io.Writer) error {
	start := time.Now()
	job := metrics.NewJob("verify", appCfg.MongoDatabase)

	rep, err := initializer.NewVerifier(target, schema.Marketplace(appCfg.MongoDatabase), logger).Verify(ctx)
	if err == nil {
		err = rep.Write(out)
	}
	if err == nil && !rep.OK() {
		err = fmt.Errorf("%w: %d of %d checks", ErrVerifyFailed, rep.Failed(), len(rep.Checks))
	}

	job.Finish(time.Since(start), err)
	writeMetrics(job, core, logger)
	return err
}

// writeMetrics never fails the command; the metrics file is best effort.
func writeMetrics(job *metrics.Job, core *config.CoreConfig, logger *zap.Logger) {
	if err := job.WriteTextfile(core.MetricsTextfile, logger); err != nil {
		logger.Warn("cannot write metrics file", zap.String("file", core.MetricsTextfile), zap.Error(err))
	}
}
