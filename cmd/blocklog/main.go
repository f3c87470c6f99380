package main

import (
	"fmt"
	"os"

	"github.com/lixenwraith/blocklog"
	"github.com/spf13/cobra"
)

// options shared by all subcommands
type options struct {
	configFile string
	root       string
	memory     bool
	tickMs     int
	overrides  []string
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "blocklog",
		Short: "Append records to size-bounded rotating log files",
		Long: "blocklog buffers stamped records and drains them into numbered files on a storage root.\n" +
			"A cooperative scheduler loop polls the flush state machine on every tick.",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "TOML config file with a [blocklog] table")
	flags.StringVar(&opts.root, "root", ".", "host directory mounted as the storage root")
	flags.BoolVar(&opts.memory, "memory", false, "use in-memory storage (dry run)")
	flags.IntVar(&opts.tickMs, "tick-ms", 5, "scheduler tick in milliseconds")
	flags.StringArrayVarP(&opts.overrides, "set", "s", nil, "config override key=value, repeatable")

	rootCmd.AddCommand(newPipeCommand(opts))
	rootCmd.AddCommand(newStressCommand(opts))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openLogger builds and starts a logger from the config file, overrides and storage flags
func openLogger(opts *options) (*blocklog.Logger, *blocklog.FSStorage, error) {
	cfg := blocklog.DefaultConfig()
	if opts.configFile != "" {
		loaded, err := blocklog.NewConfigFromFile(opts.configFile)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}

	var storage *blocklog.FSStorage
	if opts.memory {
		storage = blocklog.NewMemStorage()
	} else {
		storage = blocklog.NewOSStorage(opts.root)
	}

	logger := blocklog.NewLogger(storage)
	if err := logger.ApplyConfig(cfg); err != nil {
		return nil, nil, err
	}
	if len(opts.overrides) > 0 {
		if err := logger.ApplyConfigString(opts.overrides...); err != nil {
			return nil, nil, err
		}
	}
	if err := logger.Start(); err != nil {
		return nil, nil, fmt.Errorf("start logger: %w", err)
	}
	return logger, storage, nil
}

// printStats writes the counter snapshot as key=value pairs
func printStats(logger *blocklog.Logger) {
	args := logger.Stats().Args()
	for i := 0; i+1 < len(args); i += 2 {
		fmt.Fprintf(os.Stderr, "%v=%v ", args[i], args[i+1])
	}
	fmt.Fprintln(os.Stderr)
}
