package tiled

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/tilemap.go/pkg/grid"
	"github.com/jpfielding/tilemap.go/pkg/tiles"
)

func TestGIDs(t *testing.T) {
	cells := &tiles.CellMap{Width: 2, Height: 2, IDs: []int{0, 3, 1, tiles.EmptyCell}}
	assert.Equal(t, []uint32{1, 4, 2, 0}, GIDs(cells))
}

func TestNewMap(t *testing.T) {
	cells := &tiles.CellMap{Width: 2, Height: 2, IDs: []int{0, 1, 1, tiles.EmptyCell}}
	layout := tiles.Layout{Columns: 2, Rows: 1, TileSize: 16}

	m, err := NewMap(cells, layout, 2, "atlas.png", "overworld_tiles", EncodingCSV)
	require.NoError(t, err)

	assert.Equal(t, -1, m.CompressionLevel)
	assert.Equal(t, 2, m.Width)
	assert.Equal(t, 2, m.Height)
	assert.False(t, m.Infinite)
	assert.Equal(t, "orthogonal", m.Orientation)
	assert.Equal(t, "right-down", m.RenderOrder)
	assert.Equal(t, "map", m.Type)
	assert.Equal(t, "1.10", m.Version)
	assert.Equal(t, 16, m.TileWidth)

	require.Len(t, m.Layers, 1)
	layer := m.Layers[0]
	assert.Equal(t, []uint32{1, 2, 2, 0}, layer.Data)
	assert.Equal(t, 1, layer.ID)
	assert.Equal(t, "terrain", layer.Name)
	assert.Equal(t, float64(1), layer.Opacity)
	assert.Equal(t, "tilelayer", layer.Type)
	assert.True(t, layer.Visible)
	assert.Empty(t, layer.Encoding)

	require.Len(t, m.Tilesets, 1)
	ts := m.Tilesets[0]
	assert.Equal(t, 2, ts.Columns)
	assert.Equal(t, 1, ts.FirstGID)
	assert.Equal(t, "atlas.png", ts.Image)
	assert.Equal(t, 32, ts.ImageWidth)
	assert.Equal(t, 16, ts.ImageHeight)
	assert.Equal(t, 0, ts.Margin)
	assert.Equal(t, 0, ts.Spacing)
	assert.Equal(t, "overworld_tiles", ts.Name)
	assert.Equal(t, 2, ts.TileCount)
}

func TestNewMapTrueAtlasHeight(t *testing.T) {
	// A ragged last atlas row still reports the true pixel height.
	cells := &tiles.CellMap{Width: 5, Height: 1, IDs: []int{0, 1, 2, 3, 4}}
	layout := tiles.Layout{Columns: 2, Rows: 3, TileSize: 16}

	m, err := NewMap(cells, layout, 5, "atlas.png", "tiles", EncodingCSV)
	require.NoError(t, err)
	assert.Equal(t, 48, m.Tilesets[0].ImageHeight)
}

func TestMarshalKeyOrder(t *testing.T) {
	cells := &tiles.CellMap{Width: 1, Height: 1, IDs: []int{0}}
	layout := tiles.Layout{Columns: 1, Rows: 1, TileSize: 16}
	m, err := NewMap(cells, layout, 1, "atlas.png", "tiles", EncodingCSV)
	require.NoError(t, err)

	b, err := Marshal(m)
	require.NoError(t, err)
	s := string(b)

	require.True(t, strings.HasPrefix(s, "{\n  \"compressionlevel\": -1,"), "got prefix %q", s[:40])
	ordered := []string{
		`"compressionlevel"`, `"height"`, `"width"`, `"infinite"`,
		`"orientation"`, `"renderorder"`, `"tiledversion"`,
		`"tileheight"`, `"tilewidth"`, `"type"`, `"version"`,
		`"layers"`, `"tilesets"`,
	}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, strings.Index(s, ordered[i-1]), strings.Index(s, ordered[i]),
			"%s should precede %s", ordered[i-1], ordered[i])
	}
}

func TestMarshalDeterministic(t *testing.T) {
	build := func() []byte {
		cells := &tiles.CellMap{Width: 2, Height: 1, IDs: []int{1, 0}}
		layout := tiles.Layout{Columns: 2, Rows: 1, TileSize: 8}
		m, err := NewMap(cells, layout, 2, "a.png", "tiles", EncodingBase64Zstd)
		require.NoError(t, err)
		b, err := Marshal(m)
		require.NoError(t, err)
		return b
	}
	assert.Equal(t, build(), build())
}

func TestScreenProperties(t *testing.T) {
	props := ScreenProperties(grid.Segmented(16, 16, 11, 16, 8, 0))
	require.Len(t, props, 4)
	assert.Equal(t, Property{Name: "screen_width", Type: "int", Value: 16}, props[0])
	assert.Equal(t, Property{Name: "screen_height", Type: "int", Value: 11}, props[1])
	assert.Equal(t, Property{Name: "screens_wide", Type: "int", Value: 16}, props[2])
	assert.Equal(t, Property{Name: "screens_tall", Type: "int", Value: 8}, props[3])

	assert.Nil(t, ScreenProperties(grid.Flat(16, 64, 64)))
}

func TestWrite(t *testing.T) {
	cells := &tiles.CellMap{Width: 1, Height: 1, IDs: []int{0}}
	layout := tiles.Layout{Columns: 1, Rows: 1, TileSize: 16}
	m, err := NewMap(cells, layout, 1, "atlas.png", "tiles", EncodingCSV)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "overworld.json")
	require.NoError(t, Write(path, m))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Map
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, m.Width, got.Width)
	assert.Equal(t, "terrain", got.Layers[0].Name)
}
