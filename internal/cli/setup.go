// Package cli wires configuration, diagnostics and the locked writer together
// for the lockappend command. It turns the writer's result into diagnostic
// lines and an outcome code.
package cli

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/zoro11031/lockappend/internal/config"
	"github.com/zoro11031/lockappend/internal/lockfile"
	"github.com/zoro11031/lockappend/internal/system"
	"github.com/zoro11031/lockappend/internal/ui"
)

// Options configures a new AppContext
type Options struct {
	// ConfigPath overrides ~/.lockappend.conf
	ConfigPath string
	// Verbose forces step tracing on regardless of the config file
	Verbose bool
	// Output receives diagnostics; nil means stderr
	Output io.Writer
	// FS replaces the real file system, for tests
	FS system.FileSystemManager
}

// AppContext holds all dependencies needed for a locked write
type AppContext struct {
	Config  *config.Config
	UI      *ui.UI
	Log     *zap.SugaredLogger
	Writer  *lockfile.Writer
	verbose bool
}

// NewAppContext creates an AppContext with all dependencies initialized.
// Config problems are reported as warnings and never prevent the write.
func NewAppContext(opts Options) (*AppContext, error) {
	uiInstance := ui.New()
	if opts.Output != nil {
		uiInstance = ui.NewWithWriter(opts.Output)
	}

	cfg := config.New(opts.ConfigPath)
	if err := cfg.Load(); err != nil {
		uiInstance.Warningf("Ignoring config %s: %v", cfg.FilePath(), err)
	}

	colorEnabled, err := cfg.GetBool(config.KeyColor)
	if err != nil {
		uiInstance.Warning(err.Error())
		colorEnabled = true
	}
	if !colorEnabled {
		uiInstance.SetColor(false)
	}

	verbose := opts.Verbose
	if !verbose {
		verbose, err = cfg.GetBool(config.KeyVerbose)
		if err != nil {
			uiInstance.Warning(err.Error())
		}
	}

	log, err := newLogger(verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	fs := opts.FS
	if fs == nil {
		fs = system.NewFileSystem()
	}

	return &AppContext{
		Config:  cfg,
		UI:      uiInstance,
		Log:     log,
		Writer:  lockfile.NewWriter(fs, log),
		verbose: verbose,
	}, nil
}

// newLogger returns a debug-level logger on stderr when verbose, otherwise a
// no-op logger
func newLogger(verbose bool) (*zap.SugaredLogger, error) {
	if !verbose {
		return zap.NewNop().Sugar(), nil
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

// Run performs one locked write and reports the outcome
func (ctx *AppContext) Run(path, message string, truncate bool) lockfile.Outcome {
	defer ctx.Log.Sync()

	res, err := ctx.Writer.Write(path, message, lockfile.Options{Clear: truncate})
	if res != nil && res.RestoreErr != nil {
		ctx.UI.Warningf("chmod 000: %v", res.RestoreErr)
	}
	if err != nil {
		ctx.UI.Error(err.Error())
		return lockfile.OutcomeOf(err)
	}

	if ctx.verbose {
		if res.Created {
			ctx.UI.Infof("Created %s with mode 0000", path)
		}
		ctx.UI.Successf("Wrote %d bytes to %s", res.BytesWritten, path)
	}
	return lockfile.OutcomeSuccess
}
