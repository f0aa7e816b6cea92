// Command reactive-replay replays a scripted sequence of list and dictionary
// mutations and prints the normalized diffs they produce, one JSON object per
// line. It is a debugging aid for incremental renderers.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	reactive "github.com/xariahdailstone/xarchat-reactive"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	logLevel   string
}

func buildRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "reactive-replay",
		Short:         "Replay collection mutations and print their normalized diffs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Context configuration file (.yaml, .json or .toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides the config file)")

	run := &cobra.Command{
		Use:     "run <script>",
		Short:   "Replay a YAML script",
		Example: "  reactive-replay run testdata/basic.yaml",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rc, err := newContext(opts)
			if err != nil {
				return err
			}

			script, err := LoadScript(args[0])
			if err != nil {
				return err
			}

			return Replay(rc, script, cmd.OutOrStdout())
		},
	}
	root.AddCommand(run)

	return root
}

func newContext(opts *options) (*reactive.Context, error) {
	var cfg reactive.Config
	if opts.configPath != "" {
		c, err := reactive.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return reactive.NewContext(reactive.WithLogger(logger), reactive.WithConfig(cfg)), nil
}
