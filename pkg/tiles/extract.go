package tiles

import (
	"image"

	"github.com/jpfielding/tilemap.go/pkg/grid"
)

// Extract walks every grid cell of src in raster order and calls fn with
// the cell and a copy of its pixels. Segmented layouts visit regions
// row-major and every tile of a region before the next region; flat
// layouts visit tiles row-major. Cells whose square falls outside src's
// bounds are skipped and counted, so callers can report clipped sources.
// The copies never alias src. An error from fn aborts the walk.
func Extract(src *image.NRGBA, geo grid.Geometry, fn func(Cell, *image.NRGBA) error) (skipped int, err error) {
	if err := geo.Validate(); err != nil {
		return 0, err
	}
	bounds := src.Bounds()
	visit := func(tx, ty, px, py int) error {
		r := image.Rect(px, py, px+geo.TileSize, py+geo.TileSize).Add(bounds.Min)
		if !r.In(bounds) {
			skipped++
			return nil
		}
		return fn(Cell{X: tx, Y: ty}, copyBlock(src, r))
	}
	if geo.Layout == grid.LayoutSegmented {
		for ry := 0; ry < geo.RegionsY; ry++ {
			for rx := 0; rx < geo.RegionsX; rx++ {
				for ly := 0; ly < geo.RegionTilesY; ly++ {
					for lx := 0; lx < geo.RegionTilesX; lx++ {
						px, py := geo.CellOrigin(rx, ry, lx, ly)
						tx := rx*geo.RegionTilesX + lx
						ty := ry*geo.RegionTilesY + ly
						if err := visit(tx, ty, px, py); err != nil {
							return skipped, err
						}
					}
				}
			}
		}
		return skipped, nil
	}
	for ty := 0; ty < geo.TilesY; ty++ {
		for tx := 0; tx < geo.TilesX; tx++ {
			px, py := geo.TileOrigin(tx, ty)
			if err := visit(tx, ty, px, py); err != nil {
				return skipped, err
			}
		}
	}
	return skipped, nil
}

// copyBlock copies r out of src into a fresh, tightly packed buffer.
func copyBlock(src *image.NRGBA, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		off := src.PixOffset(r.Min.X, r.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[off:off+4*r.Dx()])
	}
	return dst
}
