package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvaghela/bizbook/internal/model"
	"github.com/mvaghela/bizbook/internal/sync"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bulk-copy the local store to the remote store (local wins)",
	Long: `Migrate writes every local record to the remote store as one atomic
batch. Remote records with matching ids are overwritten field by field
with the local values. Intended as a one-time adopt-the-cloud step,
but safe to re-run: it always re-asserts the same local state.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := openStore(cfg)
		gateway := openGateway(cfg)
		defer gateway.Close()

		coordinator := sync.New(gateway, nil, cfg.FetchLimit)

		start := time.Now()
		result, err := coordinator.Migrate(context.Background(), st.Export().Partial())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error during migrate: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Migrate complete in %v\n", time.Since(start).Round(time.Millisecond))
		printResult(result)
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Add local records missing from the remote store (remote wins)",
	Long: `Import writes only the records whose ids are absent from the remote
store, as one atomic batch. A record that already exists remotely is
never overwritten, even when the local copy differs.

With no argument the local store is imported; with a file argument the
backup file is imported instead.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		var partial *model.Partial
		if len(args) == 1 {
			partial = readBackup(args[0])
		} else {
			partial = openStore(cfg).Export().Partial()
		}

		gateway := openGateway(cfg)
		defer gateway.Close()

		coordinator := sync.New(gateway, nil, cfg.FetchLimit)

		start := time.Now()
		result, err := coordinator.Import(context.Background(), partial)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error during import: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Import complete in %v\n", time.Since(start).Round(time.Millisecond))
		printResult(result)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local and remote record counts",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := openStore(cfg)

		fmt.Printf("\nLocal store (%s)\n", cfg.DataFile)
		counts := st.Export().Counts()
		for _, kind := range model.Kinds {
			fmt.Printf("   %s: %d\n", kind, counts[kind.Collection()])
		}

		if cfg.RemoteDB == "" {
			fmt.Println("\nRemote store: not configured")
			return
		}

		gateway := tryGateway(cfg)
		if gateway == nil {
			fmt.Printf("\nRemote store (%s): unreachable\n", cfg.RemoteDB)
			return
		}
		defer gateway.Close()

		fmt.Printf("\nRemote store (%s)\n", cfg.RemoteDB)
		ctx := context.Background()
		for _, kind := range model.Kinds {
			count, err := gateway.Count(ctx, kind)
			if err != nil {
				fmt.Printf("   %s: error (%v)\n", kind, err)
				continue
			}
			fmt.Printf("   %s: %d\n", kind, count)
		}

		if info, err := os.Stat(cfg.RemoteDB); err == nil {
			fmt.Printf("   size: %s\n", formatSize(info.Size()))
		}
	},
}

func printResult(result *sync.Result) {
	fmt.Printf("   staged: %d\n", result.Total())
	for _, kind := range model.Kinds {
		name := kind.Collection()
		if result.Staged[name] == 0 && result.Skipped[name] == 0 {
			continue
		}
		fmt.Printf("   %s: %d staged, %d skipped\n", name, result.Staged[name], result.Skipped[name])
	}
}

func formatSize(size int64) string {
	switch {
	case size > 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	case size > 1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd, importCmd, statusCmd)
}
