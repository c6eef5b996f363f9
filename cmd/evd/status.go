package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eventdeck/eventdeck/internal/ui"
	"github.com/eventdeck/eventdeck/internal/workflow"
)

var flagStatusEvent string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show collection state and allowed operations",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		cfg := loadConfig()
		token := resolveToken(cfg)

		pendingImages := 0
		for _, e := range st.Events() {
			if e.HasLocalImages() {
				pendingImages++
			}
		}

		fmt.Printf("Events: %d (%d with local images)\n", st.Len(), pendingImages)
		if token != "" {
			fmt.Printf("Auth:   %s\n", ui.RenderSuccess("token present"))
		} else {
			fmt.Printf("Auth:   %s\n", ui.RenderWarning("no token"))
		}

		actions := workflow.Allowed(st.Events(), flagStatusEvent, token != "")

		check := func(ok bool) string {
			if ok {
				return ui.RenderSuccess("yes")
			}
			return ui.RenderDim("no")
		}
		fmt.Println()
		fmt.Printf("  upload images: %s\n", check(actions.UploadImages))
		fmt.Printf("  sync:          %s\n", check(actions.Sync))
		if actions.Merge {
			fmt.Printf("  merge:         %s (%d event(s) pending)\n", check(true), actions.PendingMerge)
		} else {
			fmt.Printf("  merge:         %s (%s)\n", check(false), actions.MergeBlockedReason)
		}

		if flagStatusEvent != "" {
			fmt.Println()
			fmt.Printf("Event %s:\n", ui.RenderAccent(flagStatusEvent))
			fmt.Printf("  edit:           %s\n", check(actions.EditEvent))
			fmt.Printf("  delete:         %s\n", check(actions.DeleteEvent))
			fmt.Printf("  process images: %s\n", check(actions.ProcessImages))
		}
	},
}

func init() {
	statusCmd.Flags().StringVar(&flagStatusEvent, "event", "", "evaluate per-event operations for this id")
}
