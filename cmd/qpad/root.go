package main

import (
	"github.com/spf13/cobra"

	"github.com/kobzarvs/qpad/internal/app"
	"github.com/kobzarvs/qpad/internal/logger"
)

type rootOptions struct {
	mode  string
	debug bool
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(readSecretFromTTY)
}

func newRootCmdWith(readSecret secretReader) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "qpad [FILE]",
		Short:         "A small terminal notepad with sudo save",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(opts.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return app.New(app.Options{Path: path, Mode: opts.mode}).Run()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.mode, "mode", "", "editing mode: plain or markup")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log at debug level")
	cmd.AddCommand(newWriteCmd(opts, readSecret))
	return cmd
}
