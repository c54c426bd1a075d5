package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvaghela/bizbook/internal/model"
)

var backupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Export the full local store to a backup file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore(loadConfig())
		snapshot := st.Export()

		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling backup: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(args[0], data, 0600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing backup: %v\n", err)
			os.Exit(1)
		}

		counts := snapshot.Counts()
		fmt.Printf("Backup written to %s\n", args[0])
		for _, kind := range model.Kinds {
			fmt.Printf("   %s: %d\n", kind, counts[kind.Collection()])
		}
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the entire local store from a backup file",
	Long: `Restore replaces every collection and the profile with the contents
of the backup file. The file must contain all five collection keys,
even if some are empty arrays.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		partial := readBackup(args[0])
		snapshot, err := partial.Complete()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		st := openStore(loadConfig())
		st.RestoreData(snapshot)
		fmt.Printf("Restored %d records from %s\n", totalCount(snapshot), args[0])
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge <file>",
	Short: "Merge a backup file into the local store",
	Long: `Merge reconciles each collection present in the file with the local
store by record id: incoming records win, records missing locally are
added, and local records absent from the file are kept. Collections
absent from the file are left untouched.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		partial := readBackup(args[0])
		st := openStore(loadConfig())
		st.ImportData(partial)
		fmt.Printf("Merged %s into the local store\n", args[0])
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the local store to empty",
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Fprintf(os.Stderr, "Error: pass --yes to confirm clearing all local data\n")
			os.Exit(1)
		}
		st := openStore(loadConfig())
		st.ClearData()
		fmt.Println("Local store cleared")
	},
}

// readBackup parses and structurally validates a backup file, or exits.
func readBackup(path string) *model.Partial {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading backup file: %v\n", err)
		os.Exit(1)
	}
	partial, err := model.ParseBackup(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return partial
}

func totalCount(snapshot *model.Snapshot) int {
	total := 0
	for _, n := range snapshot.Counts() {
		total += n
	}
	return total
}

func init() {
	clearCmd.Flags().Bool("yes", false, "confirm clearing all local data")
	rootCmd.AddCommand(backupCmd, restoreCmd, mergeCmd, clearCmd)
}
