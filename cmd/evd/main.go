// Command evd curates a local event collection and keeps it in sync
// with an event server and an S3-compatible image store.
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eventdeck/eventdeck/internal/config"
	"github.com/eventdeck/eventdeck/internal/store"
)

var (
	flagDir        string
	flagConfigFile string
	flagToken      string
)

var rootCmd = &cobra.Command{
	Use:   "evd",
	Short: "Event curation and sync tool",
	Long: `evd manages a local collection of events (title, dates, tags, images)
stored as JSON, resizes and uploads event images to an S3-compatible
store, and merges the collection with an event server.

State lives in a .evd directory, discovered by walking up from the
working directory (or set explicitly with --dir).`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "data directory (default: nearest .evd)")
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "config file (default: <dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "bearer token for server operations (or EVD_TOKEN)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(stockCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// fatalf prints an error and exits.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// dataDir resolves the data directory: the --dir flag, the nearest .evd
// directory, or ./.evd as a fallback for fresh setups.
func dataDir() string {
	if flagDir != "" {
		return flagDir
	}
	if dir := config.FindDataDir("."); dir != "" {
		return dir
	}
	return config.DataDirName
}

// openStore opens the event store inside the data directory.
func openStore() *store.Store {
	st, err := store.Open(filepath.Join(dataDir(), store.FileName), quietLogger())
	if err != nil {
		fatalf("%v", err)
	}
	return st
}

// loadConfig reads configuration, preferring --config over the default
// file inside the data directory.
func loadConfig() *config.Config {
	path := flagConfigFile
	if path == "" {
		candidate := filepath.Join(dataDir(), "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		fatalf("%v", err)
	}
	return cfg
}

// resolveToken picks the bearer token: flag first, then config/env.
func resolveToken(cfg *config.Config) string {
	if flagToken != "" {
		return flagToken
	}
	return cfg.Token
}

// quietLogger suppresses component chatter for interactive commands.
func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}
