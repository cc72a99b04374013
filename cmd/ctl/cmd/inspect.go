package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpfielding/tilemap.go/pkg/grid"
	"github.com/jpfielding/tilemap.go/pkg/imageio"
	"github.com/jpfielding/tilemap.go/pkg/tiles"
	"github.com/jpfielding/tilemap.go/pkg/util"
)

// NewInspectCmd creates the inspect cobra command
func NewInspectCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect tile statistics of a world map image",
		Long:  "Slices a world map image without writing the usual outputs and displays grid geometry, unique tile counts, and the most reused tiles.",
		RunE: func(cmd *cobra.Command, args []string) error {
			filePath := viper.GetString("file")
			if filePath == "" && len(args) > 0 {
				filePath = args[0]
			}
			if filePath == "" {
				return fmt.Errorf("file path is required. Use --file flag or provide as argument")
			}
			opts := extractOptions{
				Image:        filePath,
				TileSize:     viper.GetInt("tile-size"),
				Mode:         viper.GetString("mode"),
				RegionTilesX: viper.GetInt("region-tiles-x"),
				RegionTilesY: viper.GetInt("region-tiles-y"),
				RegionsX:     viper.GetInt("regions-x"),
				RegionsY:     viper.GetInt("regions-y"),
				Separator:    viper.GetInt("separator"),
			}
			return runInspect(opts, viper.GetInt("dump-tile"), viper.GetString("out"), viper.GetBool("hashes"))
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "World map image to inspect")
	pf.Int("tile-size", 16, "Tile edge length in pixels")
	pf.String("mode", "flat", "Grid layout (flat|segmented)")
	pf.Int("region-tiles-x", 16, "Tiles per region horizontally (segmented)")
	pf.Int("region-tiles-y", 11, "Tiles per region vertically (segmented)")
	pf.Int("regions-x", 0, "Region columns in the image (segmented)")
	pf.Int("regions-y", 0, "Region rows in the image (segmented)")
	pf.Int("separator", 0, "Separator width in pixels between regions (segmented)")
	pf.Bool("hashes", false, "Print a content hash per unique tile")
	pf.Int("dump-tile", -1, "Unique tile id to dump to disk")
	pf.String("out", "", "Output path for the dumped tile")

	return cmd
}

// runInspect slices the image in memory and reports what extract would produce.
func runInspect(opts extractOptions, dumpTile int, outPath string, hashes bool) error {
	img, err := imageio.Load(opts.Image)
	if err != nil {
		return err
	}
	src := imageio.ToNRGBA(img)
	bounds := src.Bounds()

	geo, err := geometryFor(opts, bounds.Dx(), bounds.Dy())
	if err != nil {
		return err
	}

	fmt.Println("=== Image ===")
	fmt.Printf("Path: %s\n", opts.Image)
	fmt.Printf("Size: %dx%d\n", bounds.Dx(), bounds.Dy())

	fmt.Println("\n=== Geometry ===")
	fmt.Printf("Layout: %s\n", geo.Layout)
	fmt.Printf("TileSize: %d\n", geo.TileSize)
	tx, ty := geo.GridSize()
	fmt.Printf("Grid: %dx%d tiles\n", tx, ty)
	if geo.Layout == grid.LayoutSegmented {
		fmt.Printf("Regions: %dx%d of %dx%d tiles\n", geo.RegionsX, geo.RegionsY, geo.RegionTilesX, geo.RegionTilesY)
		fmt.Printf("Separator: %dpx\n", geo.SeparatorWidth)
	}
	ew, eh := geo.ExpectedSize()
	fmt.Printf("Expected size: %dx%d\n", ew, eh)
	if err := geo.VerifySize(bounds.Dx(), bounds.Dy()); err != nil {
		fmt.Printf("Size check: %v\n", err)
	} else {
		fmt.Println("Size check: ok")
	}

	table, cells, skipped, err := tiles.Deduplicate(src, geo)
	if err != nil {
		return err
	}

	covered := 0
	uses := make(map[int]int)
	for _, id := range cells.IDs {
		if id == tiles.EmptyCell {
			continue
		}
		covered++
		uses[id]++
	}

	fmt.Println("\n=== Tiles ===")
	fmt.Printf("Cells: %d (%d skipped)\n", len(cells.IDs), skipped)
	fmt.Printf("Unique tiles: %d\n", table.Len())
	fmt.Printf("Duplicates collapsed: %d\n", covered-table.Len())
	if covered > 0 {
		fmt.Printf("Dedup ratio: %.1f%%\n", 100*float64(covered-table.Len())/float64(covered))
	}
	fmt.Printf("Content: %s\n", util.HashUUID(cells.IDs))

	ids := make([]int, 0, len(uses))
	for id := range uses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if uses[ids[i]] != uses[ids[j]] {
			return uses[ids[i]] > uses[ids[j]]
		}
		return ids[i] < ids[j]
	})
	top := 5
	if len(ids) < top {
		top = len(ids)
	}
	for i := 0; i < top; i++ {
		fmt.Printf("Tile %d: %d uses\n", ids[i], uses[ids[i]])
	}

	if hashes {
		fmt.Println("\n=== Hashes ===")
		for id, block := range table.Blocks() {
			fmt.Printf("Tile %d: %s (%d uses)\n", id, util.Md5ThenHex(block.Pix), uses[id])
		}
	}

	if dumpTile >= 0 {
		if dumpTile >= table.Len() {
			return fmt.Errorf("tile id %d out of bounds (0-%d)", dumpTile, table.Len()-1)
		}
		if outPath == "" {
			outPath = fmt.Sprintf("tile_%d.png", dumpTile)
		}
		fmt.Printf("\nDumping tile %d to %s\n", dumpTile, outPath)
		return imageio.SavePNG(outPath, table.Block(dumpTile))
	}
	return nil
}
