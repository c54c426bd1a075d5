// Command bizbook manages a small business's local-first records:
// sales, customers, vehicles, expenses, reminders, and the business
// profile. Records live in a durable local snapshot and can be
// migrated or imported into a remote document store on demand.
package main

import (
	"fmt"
	"os"

	"github.com/mvaghela/bizbook/internal/logging"
)

func main() {
	logging.Setup()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
