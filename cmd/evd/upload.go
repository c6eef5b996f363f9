package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/eventdeck/eventdeck/internal/blob"
	"github.com/eventdeck/eventdeck/internal/ui"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload local event images to the blob store",
	Long: `Walk the event collection and upload every image still on the local
filesystem to the S3-compatible store. Event image URLs are rewritten
to the public URLs in place.

Events already marked as uploaded are skipped, so re-running is safe.
Individual failures are logged (` + blob.ErrorLogName + `) and never
abort the batch.`,
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
			Logger:    log.New(os.Stderr, "[blob] ", 0),
		})

		res := syncer.SyncAll(context.Background())

		switch {
		case res.TotalProcessed == 0:
			fmt.Println("Nothing to upload.")
		case res.Failed == 0:
			fmt.Printf("%s Image sync complete: %d uploaded across %d events\n",
				ui.RenderSuccess("✓"), res.Succeeded, res.TotalProcessed)
		default:
			fmt.Printf("%s Image sync finished with %d error(s): %d uploaded, see %s\n",
				ui.RenderWarning("!"), res.Failed, res.Succeeded, blob.ErrorLogName)
			for _, reason := range res.Failures {
				fmt.Printf("  - %s\n", ui.RenderDim(reason))
			}
			os.Exit(1)
		}
	},
}
