package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eventdeck/eventdeck/internal/stock"
	"github.com/eventdeck/eventdeck/internal/ui"
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Curated stock images",
	Long: `Browse and apply stock images from the manifest
(<dir>/stock-images-manifest.json).

Stock images already live on the CDN in all three variants, so applying
one needs no local processing or upload.`,
}

var stockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available stock images",
	Run: func(cmd *cobra.Command, args []string) {
		m := loadStockManifest()

		if len(m.Images) == 0 {
			fmt.Println("No stock images in manifest.")
			return
		}
		for _, img := range m.Images {
			fmt.Printf("%s  %s\n", ui.RenderAccent(img.ID), img.DisplayName())
		}
	},
}

var stockApplyCmd = &cobra.Command{
	Use:   "apply <event-id> <image-id>",
	Short: "Apply a stock image to an event",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()

		e := st.Get(args[0])
		if e == nil {
			fatalf("event %s not found", args[0])
		}

		m := loadStockManifest()
		img, ok := m.Find(args[1])
		if !ok {
			fatalf("stock image %s not in manifest", args[1])
		}

		cfg := loadConfig()
		if cfg.StockBaseURL == "" {
			fatalf("stock_base_url is not configured")
		}

		stock.Apply(e, img, cfg.StockBaseURL)
		if err := st.Save(); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("%s Applied stock image %s to %s\n",
			ui.RenderSuccess("✓"), img.DisplayName(), ui.RenderAccent(e.ID))
	},
}

func loadStockManifest() *stock.Manifest {
	m, err := stock.LoadManifest(filepath.Join(dataDir(), stock.ManifestName))
	if err != nil {
		fatalf("%v", err)
	}
	return m
}

func init() {
	stockCmd.AddCommand(stockListCmd)
	stockCmd.AddCommand(stockApplyCmd)
}
