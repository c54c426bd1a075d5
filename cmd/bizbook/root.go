package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvaghela/bizbook/internal/config"
	"github.com/mvaghela/bizbook/internal/remote"
	"github.com/mvaghela/bizbook/internal/store"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "bizbook",
	Short: "Local-first business records with remote sync",
	Long: `bizbook keeps sales, customers, vehicles, expenses, and reminders
in a durable local snapshot, and can migrate or import them into a
remote document store.

The local snapshot is always the working copy; nothing touches the
remote store except the explicit migrate and import commands.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default .bizbook/config.yaml)")
}

// loadConfig reads configuration or exits.
func loadConfig() *config.Config {
	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openStore opens the local store backed by the configured data file,
// or exits.
func openStore(cfg *config.Config) *store.Store {
	st, err := store.New(store.NewFilePersister(cfg.DataFile), nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening local store: %v\n", err)
		os.Exit(1)
	}
	return st
}

// openGateway connects to the configured remote store, or exits. The
// caller must Close the gateway.
func openGateway(cfg *config.Config) *remote.Gateway {
	gateway, err := remote.Open(cfg.RemoteDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to remote store: %v\n", err)
		os.Exit(1)
	}
	return gateway
}

// tryGateway connects to the remote store if configured, returning nil
// when unavailable so read paths can fall back.
func tryGateway(cfg *config.Config) *remote.Gateway {
	gateway, err := remote.Open(cfg.RemoteDB)
	if err != nil {
		return nil
	}
	return gateway
}
