package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/born-ml/jitlink/internal/config"
	"github.com/born-ml/jitlink/internal/funcify"
	"github.com/born-ml/jitlink/internal/jit"
	"github.com/born-ml/jitlink/internal/logger"
	"github.com/born-ml/jitlink/internal/tracing"
)

// app is the state shared by subcommands once configuration is loaded.
type app struct {
	cfgFile string
	cfg     config.Config
	log     *zap.Logger
	tracer  *tracing.Provider
	disp    *funcify.Dispatcher
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "jitlink",
		Short: "Compile computation graphs into callable kernels",
		Long: `jitlink turns function graphs of scalar and elementwise ops into
compiled kernels and runs them.`,
		Version:            version,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ./jitlink.yaml or ~/.config/jitlink/config.yaml)")
	root.PersistentFlags().String("log-level", "", "override log.level")

	root.AddCommand(newRunCmd(a), newOpsCmd(a), newVersionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v := viper.New()
	if err := v.BindPFlag("log.level", cmd.Root().PersistentFlags().Lookup("log-level")); err != nil {
		return err
	}

	cfg, err := config.Load(v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.log, err = logger.New(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}

	a.tracer, err = tracing.NewProvider(cfg.Tracing, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	compiler := jit.NewCompiler(append(cfg.CompilerOptions(),
		jit.WithLogger(a.log),
		jit.WithTracer(a.tracer.Tracer()),
	)...)
	a.disp = funcify.New(cfg.Funcify(),
		funcify.WithLogger(a.log),
		funcify.WithTracer(a.tracer.Tracer()),
		funcify.WithCompiler(compiler),
	)

	cmd.SetContext(logger.NewContextWithLogger(contextOf(cmd), a.log))
	a.log.Debug("configuration loaded",
		zap.Bool("vectorize", cfg.Vectorize),
		zap.Duration("cache_ttl", cfg.Cache.TTL),
		zap.Bool("tracing", cfg.Tracing.Enabled),
	)
	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.tracer == nil {
		return nil
	}
	if err := a.tracer.Shutdown(contextOf(cmd)); err != nil {
		return fmt.Errorf("shutting down tracer: %w", err)
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
