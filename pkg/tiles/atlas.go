package tiles

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Packing selects how unique tiles are laid out in the atlas.
type Packing string

const (
	// PackFixedColumns keeps a configured column count and grows rows.
	PackFixedColumns Packing = "fixed"
	// PackSquare picks ceil(sqrt(count)) columns for a roughly square
	// sheet.
	PackSquare Packing = "square"
)

// Background selects the fill for unused trailing atlas cells.
type Background string

const (
	BackgroundTransparent Background = "transparent"
	BackgroundBlack       Background = "black"
)

// Atlas errors.
var (
	ErrBadPacking    = errors.New("tiles: invalid packing")
	ErrBadBackground = errors.New("tiles: invalid background")
)

// Color returns the concrete fill pixel. The empty value means
// transparent.
func (b Background) Color() (color.NRGBA, error) {
	switch b {
	case BackgroundTransparent, "":
		return color.NRGBA{}, nil
	case BackgroundBlack:
		return color.NRGBA{A: 255}, nil
	}
	return color.NRGBA{}, fmt.Errorf("%w: %q", ErrBadBackground, b)
}

// Layout is the atlas grid an ID maps into: ID i occupies tile cell
// (i % Columns, i / Columns).
type Layout struct {
	Columns  int
	Rows     int
	TileSize int
}

// LayoutFor computes the atlas grid for count tiles under the packing
// policy. fixedColumns is read only for PackFixedColumns.
func LayoutFor(count, tileSize int, packing Packing, fixedColumns int) (Layout, error) {
	if count <= 0 {
		return Layout{}, fmt.Errorf("tiles: atlas layout for %d tiles: %w", count, ErrNoTiles)
	}
	var columns int
	switch packing {
	case PackFixedColumns:
		if fixedColumns <= 0 {
			return Layout{}, fmt.Errorf("%w: %d columns", ErrBadPacking, fixedColumns)
		}
		columns = fixedColumns
	case PackSquare:
		columns = int(math.Ceil(math.Sqrt(float64(count))))
	default:
		return Layout{}, fmt.Errorf("%w: %q", ErrBadPacking, packing)
	}
	rows := (count + columns - 1) / columns
	return Layout{Columns: columns, Rows: rows, TileSize: tileSize}, nil
}

// PixelSize returns the atlas dimensions in pixels.
func (l Layout) PixelSize() (w, h int) {
	return l.Columns * l.TileSize, l.Rows * l.TileSize
}

// CellRect returns the atlas rectangle the given ID occupies.
func (l Layout) CellRect(id int) image.Rectangle {
	x := (id % l.Columns) * l.TileSize
	y := (id / l.Columns) * l.TileSize
	return image.Rect(x, y, x+l.TileSize, y+l.TileSize)
}

// Build packs the unique blocks into a single atlas image in ID order.
// Trailing cells left over when count is not a multiple of the column
// count are filled with bg, never left undefined.
func Build(blocks []*image.NRGBA, tileSize int, packing Packing, fixedColumns int, bg Background) (*image.NRGBA, Layout, error) {
	fill, err := bg.Color()
	if err != nil {
		return nil, Layout{}, err
	}
	layout, err := LayoutFor(len(blocks), tileSize, packing, fixedColumns)
	if err != nil {
		return nil, Layout{}, err
	}
	w, h := layout.PixelSize()
	atlas := image.NewNRGBA(image.Rect(0, 0, w, h))
	if fill != (color.NRGBA{}) {
		draw.Draw(atlas, atlas.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	}
	for i, b := range blocks {
		draw.Draw(atlas, layout.CellRect(i), b, b.Bounds().Min, draw.Src)
	}
	return atlas, layout, nil
}
