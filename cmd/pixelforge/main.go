package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pixelforge/internal/algorithms"
	"pixelforge/internal/config"
	"pixelforge/internal/logger"
	"pixelforge/internal/opencv/bridge"
	"pixelforge/internal/parallel"
	"pixelforge/internal/pipeline"
)

type globalFlags struct {
	configPath string
	logLevel   string
	workers    int
	seed       uint64
	quality    int
	opencv     bool
}

// env is the state every subcommand shares once flags and config are read.
type env struct {
	cfg    config.Config
	log    logger.Logger
	opencv bool
}

func (e *env) manager() *algorithms.Manager {
	return algorithms.NewManager(e.log, e.cfg.Seed)
}

func (e *env) coordinator() *pipeline.Coordinator {
	opts := pipeline.Options{Quality: e.cfg.Quality}
	if e.opencv {
		opts.Fallback = bridge.Decode
	}
	return pipeline.NewCoordinator(e.manager(), e.log, opts)
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	e := &env{}

	root := &cobra.Command{
		Use:           "pixelforge",
		Short:         "Image processing toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			pf := cmd.Flags()
			if pf.Changed("log-level") {
				cfg.LogLevel = flags.logLevel
			}
			if pf.Changed("workers") {
				cfg.Workers = flags.workers
			}
			if pf.Changed("seed") {
				cfg.Seed = flags.seed
			}
			if pf.Changed("quality") {
				cfg.Quality = flags.quality
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level, err := logger.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			parallel.SetWorkers(cfg.Workers)

			e.cfg = cfg
			e.log = logger.NewConsoleLogger(level)
			e.opencv = flags.opencv
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "pixelforge.yaml", "configuration file")
	pf.StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.IntVar(&flags.workers, "workers", 0, "row worker count")
	pf.Uint64Var(&flags.seed, "seed", 1, "seed for randomised operations")
	pf.IntVar(&flags.quality, "quality", 95, "JPEG output quality")
	pf.BoolVar(&flags.opencv, "opencv", false, "fall back to OpenCV for formats the built-in decoders reject")

	root.AddCommand(
		newApplyCmd(e),
		newRunCmd(e),
		newMetricsCmd(e),
		newOpsCmd(e),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pixelforge:", err)
		os.Exit(1)
	}
}
