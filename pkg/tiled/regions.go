package tiled

import (
	"github.com/jpfielding/tilemap.go/pkg/grid"
)

// RegionDoc is the region metadata document: global geometry constants
// plus one record per region, independent of tile content.
type RegionDoc struct {
	TileSize           int      `json:"tile_size"`
	ScreenWidthTiles   int      `json:"screen_width_tiles"`
	ScreenHeightTiles  int      `json:"screen_height_tiles"`
	ScreenWidthPixels  int      `json:"screen_width_pixels"`
	ScreenHeightPixels int      `json:"screen_height_pixels"`
	TotalScreensWide   int      `json:"total_screens_wide"`
	TotalScreensTall   int      `json:"total_screens_tall"`
	TotalScreens       int      `json:"total_screens"`
	Screens            []Screen `json:"screens"`
}

// Screen is one region record. Pixel coordinates include any separator
// strips the geometry declares.
type Screen struct {
	ID          int `json:"id"`
	GridX       int `json:"grid_x"`
	GridY       int `json:"grid_y"`
	TileX       int `json:"tile_x"`
	TileY       int `json:"tile_y"`
	PixelX      int `json:"pixel_x"`
	PixelY      int `json:"pixel_y"`
	WidthTiles  int `json:"width_tiles"`
	HeightTiles int `json:"height_tiles"`
}

// NewRegionDoc derives the region metadata from a segmented geometry.
func NewRegionDoc(geo grid.Geometry) (RegionDoc, error) {
	if geo.Layout != grid.LayoutSegmented {
		return RegionDoc{}, ErrNoRegions
	}
	regions := geo.Regions()
	screens := make([]Screen, len(regions))
	for i, r := range regions {
		screens[i] = Screen{
			ID:          r.ID,
			GridX:       r.GridX,
			GridY:       r.GridY,
			TileX:       r.TileX,
			TileY:       r.TileY,
			PixelX:      r.PixelX,
			PixelY:      r.PixelY,
			WidthTiles:  r.WidthTiles,
			HeightTiles: r.HeightTiles,
		}
	}
	return RegionDoc{
		TileSize:           geo.TileSize,
		ScreenWidthTiles:   geo.RegionTilesX,
		ScreenHeightTiles:  geo.RegionTilesY,
		ScreenWidthPixels:  geo.RegionTilesX * geo.TileSize,
		ScreenHeightPixels: geo.RegionTilesY * geo.TileSize,
		TotalScreensWide:   geo.RegionsX,
		TotalScreensTall:   geo.RegionsY,
		TotalScreens:       geo.RegionsX * geo.RegionsY,
		Screens:            screens,
	}, nil
}
