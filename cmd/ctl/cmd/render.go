package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpfielding/tilemap.go/pkg/imageio"
	"github.com/jpfielding/tilemap.go/pkg/tiled"
)

// NewRenderCmd creates the render cobra command
func NewRenderCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Rebuild the full world image from a map document and atlas",
		Long:  "Reads a Tiled map document, resolves its tileset atlas, and reassembles the world image by stamping each referenced tile back into place.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mapPath := viper.GetString("map")
			if mapPath == "" && len(args) > 0 {
				mapPath = args[0]
			}
			if mapPath == "" {
				return fmt.Errorf("map path is required. Use --map flag or provide as argument")
			}
			return runRender(ctx, mapPath, viper.GetString("atlas"), viper.GetString("out"))
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringP("map", "m", "", "Tiled map JSON to render")
	pf.String("atlas", "", "Atlas PNG path (defaults to the tileset image in the map)")
	pf.StringP("out", "o", "render.png", "Output image path")

	return cmd
}

// runRender reassembles the world image a map document describes.
func runRender(ctx context.Context, mapPath, atlasPath, outPath string) error {
	data, err := os.ReadFile(mapPath)
	if err != nil {
		return fmt.Errorf("read map %s: %w", mapPath, err)
	}
	var doc tiled.Map
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse map %s: %w", mapPath, err)
	}

	if atlasPath == "" {
		if len(doc.Tilesets) == 0 {
			return fmt.Errorf("%w: no tilesets in %s", tiled.ErrBadDocument, mapPath)
		}
		atlasPath = doc.Tilesets[0].Image
		if !filepath.IsAbs(atlasPath) {
			atlasPath = filepath.Join(filepath.Dir(mapPath), atlasPath)
		}
	}
	img, err := imageio.Load(atlasPath)
	if err != nil {
		return err
	}

	out, err := tiled.Render(doc, imageio.ToNRGBA(img))
	if err != nil {
		return err
	}
	if err := imageio.SavePNG(outPath, out); err != nil {
		return err
	}
	b := out.Bounds()
	slog.InfoContext(ctx, "world image rendered",
		"map", mapPath, "atlas", atlasPath, "out", outPath,
		"size", fmt.Sprintf("%dx%d", b.Dx(), b.Dy()))
	return nil
}
