package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/webriots/corun/internal/config"
	"github.com/webriots/corun/internal/observability"
)

// Options holds the flags shared by every command.
type Options struct {
	ConfigPath string
	Policy     string
	Trace      string
	Routines   []string
}

func newRootCmd() *cobra.Command {
	var opts Options

	root := &cobra.Command{
		Use:           "corun",
		Short:         "Drive demo routines on the corun cooperative scheduler",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")

	run := &cobra.Command{
		Use:   "run",
		Short: "Register the configured routines and run them to completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			logger, err := observability.SetupLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			logger.Debug("effective configuration", zap.Any("config", cfg))
			_, err = runDemo(cmd.OutOrStdout(), cfg.Demo, logger)
			return err
		},
	}
	run.Flags().StringVar(&opts.Policy, "policy", "", "resume policy: ack, count or fail-on-second")
	run.Flags().StringVar(&opts.Trace, "trace", "", "write the event trace to this CBOR file")
	run.Flags().StringSliceVar(&opts.Routines, "routine", nil, "routine to register (repeatable)")

	trace := &cobra.Command{
		Use:   "trace <file>",
		Short: "Print a CBOR event trace written by run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printTrace(cmd.OutOrStdout(), args[0])
		},
	}

	root.AddCommand(run, trace)
	return root
}

// loadConfig reads the config file and applies the flags that were
// set explicitly on top of it.
func loadConfig(cmd *cobra.Command, opts Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("policy") {
		cfg.Demo.Policy = opts.Policy
	}
	if flags.Changed("trace") {
		cfg.Demo.Trace = opts.Trace
	}
	if flags.Changed("routine") {
		cfg.Demo.Routines = opts.Routines
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
