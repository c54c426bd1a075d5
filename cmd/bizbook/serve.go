package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvaghela/bizbook/internal/dashboard"
	"github.com/mvaghela/bizbook/internal/reader"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard (foreground)",
	Long: `Serve starts the dashboard HTTP server: a snapshot API, a WebSocket
feed, and Prometheus metrics. Reads go remote-first and fall back to
the local store, then to sample data, so the dashboard stays up when
the remote store is unreachable.

While serving, the local data file is watched for changes made by
other bizbook invocations; each settled change reloads the store and
pushes a fresh snapshot to connected clients.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		st := openStore(cfg)

		gateway := tryGateway(cfg)
		if gateway != nil {
			defer gateway.Close()
		} else {
			slog.Info("remote store unavailable, serving local data", "path", cfg.RemoteDB)
		}

		rd := reader.New(gateway, st, nil, cfg.FetchLimit)
		server := dashboard.NewServer(rd, dashboard.Config{Port: cfg.Dashboard.Port})
		if err := server.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting dashboard: %v\n", err)
			os.Exit(1)
		}

		watcher, err := dashboard.NewStoreWatcher(cfg.DataFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating store watcher: %v\n", err)
			os.Exit(1)
		}
		if err := watcher.Start(); err != nil {
			// The data directory may not exist until the first write.
			slog.Warn("store watcher disabled", "error", err)
			watcher = nil
		}

		fmt.Printf("Dashboard listening on http://localhost:%d\n", cfg.Dashboard.Port)
		fmt.Println("Press Ctrl+C to stop")

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		for {
			var changes <-chan struct{}
			var watchErrs <-chan error
			if watcher != nil {
				changes = watcher.Changes()
				watchErrs = watcher.Errors()
			}

			select {
			case <-stop:
				if watcher != nil {
					_ = watcher.Stop()
				}
				if err := server.Stop(); err != nil {
					fmt.Fprintf(os.Stderr, "Error stopping dashboard: %v\n", err)
					os.Exit(1)
				}
				return

			case <-changes:
				if err := st.Reload(); err != nil {
					slog.Warn("failed to reload store after change", "error", err)
					continue
				}
				slog.Info("data file changed, broadcasting snapshot")
				server.BroadcastSnapshot(ctx)

			case err := <-watchErrs:
				slog.Warn("store watcher error", "error", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
