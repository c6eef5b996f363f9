package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eventdeck/eventdeck/internal/blob"
	"github.com/eventdeck/eventdeck/internal/daemon"
	"github.com/eventdeck/eventdeck/internal/dashboard"
	"github.com/eventdeck/eventdeck/internal/ui"
)

var flagDashboardAddr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the data directory and keep images uploaded",
	Long: `Run a daemon that watches the store file and the images tree and
uploads new local images to the blob store as they appear.

With --dashboard, a WebSocket activity feed is served on /ws of the
given address so the session can be monitored remotely.`,
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		cfg := loadConfig()

		uploader, err := blob.NewS3Uploader(cfg.S3)
		if err != nil {
			fatalf("%v", err)
		}

		syncer := blob.NewSyncer(st, uploader, blob.Config{
			DataDir:   dataDir(),
			KeyPrefix: cfg.S3KeyPrefix,
			Logger:    log.New(os.Stderr, "[blob] ", log.LstdFlags),
		})

		var notifier daemon.Notifier
		if flagDashboardAddr != "" {
			server := dashboard.NewServer(flagDashboardAddr, log.New(os.Stderr, "[dashboard] ", log.LstdFlags))
			if err := server.Start(); err != nil {
				fatalf("%v", err)
			}
			defer server.Stop()
			fmt.Printf("%s Dashboard on ws://%s/ws\n", ui.RenderAccent("▸"), server.Addr())
			notifier = dashboard.NewHandler(server, nil)
		}

		d, err := daemon.New(st, syncer, dataDir(), daemon.DefaultConfig(), notifier)
		if err != nil {
			fatalf("%v", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("%s Watching %s (ctrl-c to stop)\n", ui.RenderAccent("▸"), dataDir())
		if err := d.Start(ctx); err != nil {
			fatalf("%v", err)
		}
	},
}

func init() {
	watchCmd.Flags().StringVar(&flagDashboardAddr, "dashboard", "", "serve a WebSocket activity feed on this address (e.g. :9090)")
}
