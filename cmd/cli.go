// SPDX-License-Identifier: MIT
//
// Package cmd parses the command line.
package cmd

import (
	"io"

	"specterm/pkg/build"

	"github.com/spf13/cobra"
)

// Commands selected on the command line.
const (
	CommandRun  = "run"
	CommandList = "list"
)

// Options holds what the command line asked for. Flags left unset do not
// override the configuration file.
type Options struct {
	Command     string // empty when only help or version was printed
	Interactive bool   // list -i
	Source      string
	ConfigPath  string
	Record      bool
	OutputFile  string
	Verbose     bool
	LogFile     string
}

// ParseArgs parses args (without the program name). Help and version output
// go to out.
func ParseArgs(args []string, out io.Writer) (*Options, error) {
	buildInfo := build.GetBuildInfo()
	options := &Options{}

	rootCmd := &cobra.Command{
		Use:   buildInfo.Name + " [flags] [source]",
		Short: build.Description,
		Long: build.Description + ".\n\n" +
			"source names the input device to monitor. It is matched exactly, then as a\n" +
			"case-insensitive substring. Omit it or pass \"default\" for the system default.",
		Version:       buildInfo.VersionString(),
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandRun
			if len(args) == 1 {
				options.Source = args[0]
			}
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List input devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			options.Command = CommandList
			return nil
		},
	}
	listCmd.Flags().BoolVarP(&options.Interactive, "interactive", "i", false,
		"Pick a device interactively and start the visualizer with it")
	rootCmd.AddCommand(listCmd)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&options.ConfigPath, "config", "f", "",
		"Configuration file (default: ./config.yaml, then the user config directory)")
	flags.BoolVarP(&options.Record, "record", "r", false,
		"Record the captured stream to a WAV file")
	flags.StringVarP(&options.OutputFile, "output", "o", "",
		"Recording file name (default: <output_dir>/specterm-YYYYMMDD-HHMMSS.wav)")
	flags.BoolVarP(&options.Verbose, "verbose", "v", false,
		"Log at debug level")
	flags.StringVar(&options.LogFile, "log-file", "",
		"Write logs to this file while the visualizer owns the screen")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}
