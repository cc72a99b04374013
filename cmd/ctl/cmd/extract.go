package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpfielding/tilemap.go/pkg/grid"
	"github.com/jpfielding/tilemap.go/pkg/imageio"
	"github.com/jpfielding/tilemap.go/pkg/tiled"
	"github.com/jpfielding/tilemap.go/pkg/tiles"
	"github.com/jpfielding/tilemap.go/pkg/util"
)

// NewExtractCmd creates the extract cobra command
func NewExtractCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract a deduplicated tile atlas and map document from a world image",
		Long:  "Slices a world map image into fixed-size tiles, collapses duplicates into a tileset atlas PNG, and writes a Tiled-compatible map document plus optional screen metadata.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := extractOptions{
				Image:          viper.GetString("image"),
				TileSize:       viper.GetInt("tile-size"),
				Mode:           viper.GetString("mode"),
				RegionTilesX:   viper.GetInt("region-tiles-x"),
				RegionTilesY:   viper.GetInt("region-tiles-y"),
				RegionsX:       viper.GetInt("regions-x"),
				RegionsY:       viper.GetInt("regions-y"),
				Separator:      viper.GetInt("separator"),
				Columns:        viper.GetInt("columns"),
				Packing:        viper.GetString("packing"),
				Background:     viper.GetString("background"),
				Encoding:       viper.GetString("layer-encoding"),
				Atlas:          viper.GetString("atlas"),
				Map:            viper.GetString("map"),
				Regions:        viper.GetString("regions"),
				TilesetName:    viper.GetString("tileset-name"),
				StrictGeometry: viper.GetBool("strict-geometry"),
			}
			if opts.Image == "" && len(args) > 0 {
				opts.Image = args[0]
			}
			if opts.Image == "" {
				return fmt.Errorf("image path is required. Use --image flag or provide as argument")
			}
			return runExtract(ctx, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("image", "i", "", "World map image to slice")
	pf.Int("tile-size", 16, "Tile edge length in pixels")
	pf.String("mode", "flat", "Grid layout (flat|segmented)")
	pf.Int("region-tiles-x", 16, "Tiles per region horizontally (segmented)")
	pf.Int("region-tiles-y", 11, "Tiles per region vertically (segmented)")
	pf.Int("regions-x", 0, "Region columns in the image (segmented)")
	pf.Int("regions-y", 0, "Region rows in the image (segmented)")
	pf.Int("separator", 0, "Separator width in pixels between regions (segmented)")
	pf.Int("columns", 16, "Atlas columns for fixed packing")
	pf.String("packing", "fixed", "Atlas shape (fixed|square)")
	pf.String("background", "transparent", "Atlas background fill (transparent|black)")
	pf.String("layer-encoding", "csv", "Layer data encoding (csv|base64|base64+gzip|base64+zlib|base64+zstd)")
	pf.String("atlas", "tileset.png", "Output atlas PNG path")
	pf.String("map", "map.json", "Output Tiled map JSON path")
	pf.String("regions", "", "Output screen metadata JSON path (segmented)")
	pf.String("tileset-name", "world_tiles", "Tileset name in the map document")
	pf.Bool("strict-geometry", false, "Fail when the image size disagrees with the declared geometry")

	return cmd
}

type extractOptions struct {
	Image          string
	TileSize       int
	Mode           string
	RegionTilesX   int
	RegionTilesY   int
	RegionsX       int
	RegionsY       int
	Separator      int
	Columns        int
	Packing        string
	Background     string
	Encoding       string
	Atlas          string
	Map            string
	Regions        string
	TilesetName    string
	StrictGeometry bool
}

// runExtract performs the slice, dedup, pack, export pipeline.
func runExtract(ctx context.Context, opts extractOptions) error {
	img, err := imageio.Load(opts.Image)
	if err != nil {
		return err
	}
	src := imageio.ToNRGBA(img)
	bounds := src.Bounds()
	slog.InfoContext(ctx, "world image loaded",
		"path", opts.Image, "width", bounds.Dx(), "height", bounds.Dy())

	geo, err := geometryFor(opts, bounds.Dx(), bounds.Dy())
	if err != nil {
		return err
	}
	// Screen metadata is pure geometry, so a flat layout with --regions
	// fails here, before any artifact is written.
	var screens tiled.RegionDoc
	if opts.Regions != "" {
		if screens, err = tiled.NewRegionDoc(geo); err != nil {
			return err
		}
	}
	if err := geo.VerifySize(bounds.Dx(), bounds.Dy()); err != nil {
		if opts.StrictGeometry {
			return err
		}
		slog.WarnContext(ctx, "image size disagrees with declared geometry, proceeding with actual bounds", "error", err)
	}

	table, cells, skipped, err := tiles.Deduplicate(src, geo)
	if err != nil {
		return err
	}
	if skipped > 0 {
		slog.WarnContext(ctx, "cells falling outside the image were skipped", "cells", skipped)
	}
	tx, ty := geo.GridSize()
	slog.InfoContext(ctx, "tiles deduplicated",
		"grid", fmt.Sprintf("%dx%d", tx, ty),
		"unique", table.Len(),
		"covered", tx*ty-skipped,
		"content", util.HashUUID(cells.IDs))

	atlas, layout, err := tiles.Build(table.Blocks(), geo.TileSize,
		tiles.Packing(opts.Packing), opts.Columns, tiles.Background(opts.Background))
	if err != nil {
		return err
	}
	if err := imageio.SavePNG(opts.Atlas, atlas); err != nil {
		return err
	}
	aw, ah := layout.PixelSize()
	slog.InfoContext(ctx, "atlas written",
		"path", opts.Atlas, "columns", layout.Columns, "rows", layout.Rows,
		"size", fmt.Sprintf("%dx%d", aw, ah))

	doc, err := tiled.NewMap(cells, layout, table.Len(),
		atlasRef(opts.Map, opts.Atlas), opts.TilesetName, tiled.Encoding(opts.Encoding))
	if err != nil {
		return err
	}
	doc.Properties = tiled.ScreenProperties(geo)
	if err := tiled.Write(opts.Map, doc); err != nil {
		return err
	}
	slog.InfoContext(ctx, "map document written", "path", opts.Map, "encoding", opts.Encoding)

	if opts.Regions != "" {
		if err := tiled.Write(opts.Regions, screens); err != nil {
			return err
		}
		slog.InfoContext(ctx, "screen metadata written",
			"path", opts.Regions, "screens", screens.TotalScreens)
	}
	return nil
}

// geometryFor builds the grid geometry the flags describe.
func geometryFor(opts extractOptions, widthPx, heightPx int) (grid.Geometry, error) {
	var geo grid.Geometry
	switch opts.Mode {
	case "flat":
		geo = grid.Flat(opts.TileSize, widthPx, heightPx)
	case "segmented":
		geo = grid.Segmented(opts.TileSize, opts.RegionTilesX, opts.RegionTilesY,
			opts.RegionsX, opts.RegionsY, opts.Separator)
	default:
		return grid.Geometry{}, fmt.Errorf("unknown mode %q (flat|segmented)", opts.Mode)
	}
	return geo, geo.Validate()
}

// atlasRef is the atlas path as referenced from the map document,
// relative to the document's directory when possible.
func atlasRef(mapPath, atlasPath string) string {
	rel, err := filepath.Rel(filepath.Dir(mapPath), atlasPath)
	if err != nil {
		return atlasPath
	}
	return filepath.ToSlash(rel)
}
