package tiled

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/tilemap.go/pkg/grid"
)

func TestNewRegionDoc(t *testing.T) {
	doc, err := NewRegionDoc(grid.Segmented(16, 16, 11, 16, 8, 0))
	require.NoError(t, err)

	assert.Equal(t, 16, doc.TileSize)
	assert.Equal(t, 16, doc.ScreenWidthTiles)
	assert.Equal(t, 11, doc.ScreenHeightTiles)
	assert.Equal(t, 256, doc.ScreenWidthPixels)
	assert.Equal(t, 176, doc.ScreenHeightPixels)
	assert.Equal(t, 16, doc.TotalScreensWide)
	assert.Equal(t, 8, doc.TotalScreensTall)
	assert.Equal(t, 128, doc.TotalScreens)
	require.Len(t, doc.Screens, 128)

	// Second screen of the second row.
	s := doc.Screens[17]
	assert.Equal(t, 17, s.ID)
	assert.Equal(t, 1, s.GridX)
	assert.Equal(t, 1, s.GridY)
	assert.Equal(t, 16, s.TileX)
	assert.Equal(t, 11, s.TileY)
	assert.Equal(t, 256, s.PixelX)
	assert.Equal(t, 176, s.PixelY)
	assert.Equal(t, 16, s.WidthTiles)
	assert.Equal(t, 11, s.HeightTiles)
}

func TestNewRegionDocSeparators(t *testing.T) {
	doc, err := NewRegionDoc(grid.Segmented(16, 16, 11, 2, 2, 1))
	require.NoError(t, err)

	// Pixel origins step over the one pixel separator between regions.
	assert.Equal(t, 257, doc.Screens[1].PixelX)
	assert.Equal(t, 0, doc.Screens[1].PixelY)
	assert.Equal(t, 177, doc.Screens[2].PixelY)
}

func TestNewRegionDocFlat(t *testing.T) {
	_, err := NewRegionDoc(grid.Flat(16, 256, 176))
	assert.ErrorIs(t, err, ErrNoRegions)
}

func TestRegionDocJSON(t *testing.T) {
	doc, err := NewRegionDoc(grid.Segmented(16, 16, 11, 2, 1, 0))
	require.NoError(t, err)

	b, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	s := string(b)

	require.True(t, strings.HasPrefix(s, "{\n  \"tile_size\": 16,"))
	for _, key := range []string{
		`"screen_width_tiles"`, `"screen_height_tiles"`,
		`"screen_width_pixels"`, `"screen_height_pixels"`,
		`"total_screens_wide"`, `"total_screens_tall"`,
		`"total_screens"`, `"screens"`,
		`"grid_x"`, `"grid_y"`, `"tile_x"`, `"tile_y"`,
		`"pixel_x"`, `"pixel_y"`, `"width_tiles"`, `"height_tiles"`,
	} {
		assert.Contains(t, s, key)
	}
}
