// Package grid maps tile and region indices of a world-map image to
// absolute pixel offsets, for both plain tile grids and grids of
// fixed-size regions ("screens") separated by uniform border strips.
package grid

import (
	"errors"
	"fmt"
)

// Layout selects how the source image is partitioned into tiles.
type Layout string

const (
	// LayoutFlat is a plain tile grid with no separators.
	LayoutFlat Layout = "flat"
	// LayoutSegmented groups tiles into fixed-size regions separated by
	// separator strips of uniform width.
	LayoutSegmented Layout = "segmented"
)

// Geometry errors.
var (
	ErrInvalidGeometry = errors.New("grid: invalid geometry")
	ErrSizeMismatch    = errors.New("grid: image size does not match geometry")
)

// Geometry describes the tile layout of a source image. TileSize applies
// to both layouts; the region fields are meaningful only for
// LayoutSegmented and the tile counts only for LayoutFlat.
type Geometry struct {
	Layout   Layout
	TileSize int

	// Segmented layout.
	RegionTilesX   int // tiles per region, horizontally
	RegionTilesY   int // tiles per region, vertically
	RegionsX       int // regions across the image
	RegionsY       int // regions down the image
	SeparatorWidth int // pixels between adjacent regions, both axes

	// Flat layout.
	TilesX int
	TilesY int
}

// Flat derives a plain-grid geometry from the source pixel dimensions.
// Trailing pixels that do not fill a whole tile are not addressed.
func Flat(tileSize, widthPx, heightPx int) Geometry {
	g := Geometry{Layout: LayoutFlat, TileSize: tileSize}
	if tileSize > 0 {
		g.TilesX = widthPx / tileSize
		g.TilesY = heightPx / tileSize
	}
	return g
}

// Segmented builds a regions-with-separators geometry.
func Segmented(tileSize, regionTilesX, regionTilesY, regionsX, regionsY, separatorWidth int) Geometry {
	return Geometry{
		Layout:         LayoutSegmented,
		TileSize:       tileSize,
		RegionTilesX:   regionTilesX,
		RegionTilesY:   regionTilesY,
		RegionsX:       regionsX,
		RegionsY:       regionsY,
		SeparatorWidth: separatorWidth,
	}
}

// Validate reports whether the geometry can address at least one tile.
func (g Geometry) Validate() error {
	if g.TileSize <= 0 {
		return fmt.Errorf("%w: tile size %d", ErrInvalidGeometry, g.TileSize)
	}
	switch g.Layout {
	case LayoutFlat:
		if g.TilesX <= 0 || g.TilesY <= 0 {
			return fmt.Errorf("%w: %dx%d tiles", ErrInvalidGeometry, g.TilesX, g.TilesY)
		}
	case LayoutSegmented:
		if g.RegionTilesX <= 0 || g.RegionTilesY <= 0 || g.RegionsX <= 0 || g.RegionsY <= 0 {
			return fmt.Errorf("%w: %dx%d regions of %dx%d tiles",
				ErrInvalidGeometry, g.RegionsX, g.RegionsY, g.RegionTilesX, g.RegionTilesY)
		}
		if g.SeparatorWidth < 0 {
			return fmt.Errorf("%w: separator width %d", ErrInvalidGeometry, g.SeparatorWidth)
		}
	default:
		return fmt.Errorf("%w: unknown layout %q", ErrInvalidGeometry, g.Layout)
	}
	return nil
}

// GridSize returns the total addressable tiles per axis.
func (g Geometry) GridSize() (tx, ty int) {
	if g.Layout == LayoutSegmented {
		return g.RegionsX * g.RegionTilesX, g.RegionsY * g.RegionTilesY
	}
	return g.TilesX, g.TilesY
}

// RegionOrigin returns the absolute pixel offset of region (rx, ry).
// Each region advances by its pixel span plus one separator strip.
func (g Geometry) RegionOrigin(rx, ry int) (x, y int) {
	x = rx * (g.RegionTilesX*g.TileSize + g.SeparatorWidth)
	y = ry * (g.RegionTilesY*g.TileSize + g.SeparatorWidth)
	return x, y
}

// CellOrigin returns the absolute pixel offset of local tile (lx, ly)
// inside region (rx, ry).
func (g Geometry) CellOrigin(rx, ry, lx, ly int) (x, y int) {
	x, y = g.RegionOrigin(rx, ry)
	return x + lx*g.TileSize, y + ly*g.TileSize
}

// TileOrigin returns the absolute pixel offset of tile (tx, ty) in a
// flat layout.
func (g Geometry) TileOrigin(tx, ty int) (x, y int) {
	return tx * g.TileSize, ty * g.TileSize
}

// ExpectedSize returns the pixel dimensions the geometry implies.
// Segmented layouts count one separator strip between adjacent regions,
// none after the last.
func (g Geometry) ExpectedSize() (w, h int) {
	if g.Layout == LayoutSegmented {
		w = g.RegionsX*g.RegionTilesX*g.TileSize + (g.RegionsX-1)*g.SeparatorWidth
		h = g.RegionsY*g.RegionTilesY*g.TileSize + (g.RegionsY-1)*g.SeparatorWidth
		return w, h
	}
	return g.TilesX * g.TileSize, g.TilesY * g.TileSize
}

// VerifySize compares the geometry's expected pixel size against the
// measured image size. The returned error wraps ErrSizeMismatch; callers
// may log it as a warning and continue against the actual bounds.
func (g Geometry) VerifySize(widthPx, heightPx int) error {
	ew, eh := g.ExpectedSize()
	if ew == widthPx && eh == heightPx {
		return nil
	}
	return fmt.Errorf("%w: expected %dx%d, measured %dx%d", ErrSizeMismatch, ew, eh, widthPx, heightPx)
}

// Region describes one screen-sized block of a segmented grid.
type Region struct {
	ID          int // raster index, row-major over regions
	GridX       int // region column
	GridY       int // region row
	TileX       int // global tile column of the region's first tile
	TileY       int // global tile row of the region's first tile
	PixelX      int // absolute pixel origin in the source image
	PixelY      int
	WidthTiles  int
	HeightTiles int
}

// Regions enumerates a segmented layout's regions in raster order.
// Flat layouts have none.
func (g Geometry) Regions() []Region {
	if g.Layout != LayoutSegmented {
		return nil
	}
	out := make([]Region, 0, g.RegionsX*g.RegionsY)
	for ry := 0; ry < g.RegionsY; ry++ {
		for rx := 0; rx < g.RegionsX; rx++ {
			px, py := g.RegionOrigin(rx, ry)
			out = append(out, Region{
				ID:          ry*g.RegionsX + rx,
				GridX:       rx,
				GridY:       ry,
				TileX:       rx * g.RegionTilesX,
				TileY:       ry * g.RegionTilesY,
				PixelX:      px,
				PixelY:      py,
				WidthTiles:  g.RegionTilesX,
				HeightTiles: g.RegionTilesY,
			})
		}
	}
	return out
}
