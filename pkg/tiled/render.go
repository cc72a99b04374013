package tiled

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/jpfielding/tilemap.go/pkg/tiles"
)

// Render reassembles the full map image a document describes by blitting
// each referenced atlas cell into place. Empty cells (reference 0) keep
// the zero-value transparent background. The first layer and tileset are
// used; documents produced by this tool have exactly one of each.
func Render(m Map, atlas *image.NRGBA) (*image.NRGBA, error) {
	if len(m.Layers) == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrBadDocument)
	}
	if len(m.Tilesets) == 0 {
		return nil, fmt.Errorf("%w: no tilesets", ErrBadDocument)
	}
	layer, ts := m.Layers[0], m.Tilesets[0]
	if layer.Width <= 0 || layer.Height <= 0 {
		return nil, fmt.Errorf("%w: layer is %dx%d", ErrBadDocument, layer.Width, layer.Height)
	}
	if ts.Columns <= 0 || ts.TileWidth <= 0 || ts.TileHeight <= 0 {
		return nil, fmt.Errorf("%w: tileset %d columns of %dx%dpx tiles", ErrBadDocument, ts.Columns, ts.TileWidth, ts.TileHeight)
	}

	gids, err := DecodeLayerData(layer.Data, layer.Encoding, layer.Compression, layer.Width*layer.Height)
	if err != nil {
		return nil, err
	}

	layout := tiles.Layout{
		Columns:  ts.Columns,
		Rows:     (ts.TileCount + ts.Columns - 1) / ts.Columns,
		TileSize: ts.TileWidth,
	}
	out := image.NewNRGBA(image.Rect(0, 0, layer.Width*ts.TileWidth, layer.Height*ts.TileHeight))
	for i, gid := range gids {
		if gid == 0 {
			continue
		}
		id := int(gid) - 1
		if id >= ts.TileCount {
			return nil, fmt.Errorf("%w: reference %d exceeds tilecount %d", ErrBadDocument, gid, ts.TileCount)
		}
		src := layout.CellRect(id)
		dx := (i % layer.Width) * ts.TileWidth
		dy := (i / layer.Width) * ts.TileHeight
		dst := image.Rect(dx, dy, dx+ts.TileWidth, dy+ts.TileHeight)
		draw.Draw(out, dst, atlas, src.Min.Add(atlas.Bounds().Min), draw.Src)
	}
	return out, nil
}
