package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eventdeck/eventdeck/internal/images"
	"github.com/eventdeck/eventdeck/internal/ui"
)

var imageCmd = &cobra.Command{
	Use:   "image <event-id> <source-file>",
	Short: "Attach an image to an event",
	Long: `Resize a source image into the three standard variants (full, small,
thumbnail) and attach them to the event.

The variants are written under <dir>/images/{full,small,thumb}/ and the
event's image fields point at them with local-path markers until
'evd upload' migrates them to the blob store.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()

		e := st.Get(args[0])
		if e == nil {
			fatalf("event %s not found", args[0])
		}

		pipeline := images.New(filepath.Join(dataDir(), "images"), images.DefaultSizes(), quietLogger())
		res, err := pipeline.Process(args[1], e.ID)
		if err != nil {
			fatalf("%v", err)
		}

		pipeline.Apply(e, res)
		if err := st.Save(); err != nil {
			fatalf("%v", err)
		}

		fmt.Printf("%s Attached %s to %s\n", ui.RenderSuccess("✓"), res.Name, ui.RenderAccent(e.ID))
		fmt.Printf("  full:  %s\n", e.FullImageURL)
		fmt.Printf("  small: %s\n", e.SmallImageURL)
		fmt.Printf("  thumb: %s\n", e.ThumbImageURL)
	},
}
