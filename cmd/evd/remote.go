package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/eventdeck/eventdeck/internal/remote"
	"github.com/eventdeck/eventdeck/internal/ui"
	"github.com/eventdeck/eventdeck/internal/workflow"
)

var flagForceMerge bool

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Push the local event collection to the server",
	Long: `Push the entire local event collection to the server's merge
endpoint.

The server locks its store during concurrent merges (HTTP 423); this
command retries on a fixed interval, up to six attempts, before giving
up. A successful merge clears the "updated, not submitted" flag on
every event.

The merge is refused while any pending event still holds images that
have not been uploaded to the blob store; --force skips that check.`,
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		cfg := loadConfig()
		token := resolveToken(cfg)

		if !flagForceMerge {
			actions := workflow.Allowed(st.Events(), "", token != "")
			if !actions.Merge {
				fatalf("cannot merge: %s", actions.MergeBlockedReason)
			}
		}

		client := remote.New(st, &remote.Config{
			BaseURL: cfg.ServerURL,
			Logger:  log.New(os.Stderr, "[merge] ", 0),
		})

		res, err := client.Merge(context.Background(), token)
		if err != nil {
			if errors.Is(err, remote.ErrNotAuthenticated) {
				fatalf("you must provide a token before merging (--token or EVD_TOKEN)")
			}
			fatalf("%v", err)
		}

		if !res.Success {
			switch res.Kind {
			case remote.KindMergeStillLocked:
				fatalf("server still locked after %d attempts; try again later", res.Attempts)
			case remote.KindMergeTransport:
				fatalf("could not reach server: %s", res.Message)
			default:
				fatalf("server rejected merge (status %d): %s", res.Status, res.Message)
			}
		}

		// The protocol client only pushes; the submitted bookkeeping
		// lives here.
		for _, e := range st.Events() {
			e.UpdatedNotSubmitted = false
		}
		if err := st.Save(); err != nil {
			fatalf("merge succeeded but saving the store failed: %v", err)
		}

		fmt.Printf("%s Merge complete: server holds %d events (%d attempt(s))\n",
			ui.RenderSuccess("✓"), res.Total, res.Attempts)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local collection with the server",
	Long: `Fetch the server's event list and reconcile membership: local events
no longer on the server are dropped, server events missing locally are
adopted. Events present on both sides keep their local field values.`,
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		cfg := loadConfig()
		token := resolveToken(cfg)

		client := remote.New(st, &remote.Config{
			BaseURL: cfg.ServerURL,
			Logger:  log.New(os.Stderr, "[sync] ", 0),
		})

		res, err := client.Sync(context.Background(), token)
		if err != nil {
			if errors.Is(err, remote.ErrNotAuthenticated) {
				fatalf("you must provide a token before syncing (--token or EVD_TOKEN)")
			}
			fatalf("%v", err)
		}

		if !res.Success {
			if res.Kind == remote.KindSyncTransport {
				fatalf("could not reach server: %s", res.Message)
			}
			fatalf("server rejected sync (status %d): %s", res.Status, res.Message)
		}

		fmt.Printf("%s Sync complete: %d added, %d removed, %d total\n",
			ui.RenderSuccess("✓"), res.Added, res.Removed, len(res.Events))
	},
}

func init() {
	mergeCmd.Flags().BoolVar(&flagForceMerge, "force", false, "skip the uploaded-images precondition check")
}
