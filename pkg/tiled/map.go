// Package tiled serializes extraction results into Tiled 1.10 map JSON
// and region metadata JSON, and renders such documents back into images.
package tiled

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jpfielding/tilemap.go/pkg/grid"
	"github.com/jpfielding/tilemap.go/pkg/tiles"
	"github.com/jpfielding/tilemap.go/pkg/util"
)

// Tiled 1.10 format constants.
const (
	FormatVersion = "1.10"
	TiledVersion  = "1.10.0"
	Orientation   = "orthogonal"
	RenderOrder   = "right-down"
)

// Document errors.
var (
	ErrBadEncoding = errors.New("tiled: invalid layer encoding")
	ErrBadDocument = errors.New("tiled: malformed map document")
	ErrNoRegions   = errors.New("tiled: flat layouts have no regions")
)

// Map is the top-level grid-map document. Field order fixes the JSON key
// order, which is part of the tool's deterministic output.
type Map struct {
	CompressionLevel int        `json:"compressionlevel"`
	Height           int        `json:"height"`
	Width            int        `json:"width"`
	Infinite         bool       `json:"infinite"`
	Orientation      string     `json:"orientation"`
	RenderOrder      string     `json:"renderorder"`
	TiledVersion     string     `json:"tiledversion"`
	TileHeight       int        `json:"tileheight"`
	TileWidth        int        `json:"tilewidth"`
	Type             string     `json:"type"`
	Version          string     `json:"version"`
	Layers           []Layer    `json:"layers"`
	Tilesets         []Tileset  `json:"tilesets"`
	Properties       []Property `json:"properties,omitempty"`
}

// Layer is a single tile layer. Data holds the flattened row-major grid
// of 1-based tile references (0 = empty): a plain integer array for the
// csv encoding, a base64 string otherwise.
type Layer struct {
	Data        any     `json:"data"`
	Height      int     `json:"height"`
	Width       int     `json:"width"`
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Opacity     float64 `json:"opacity"`
	Type        string  `json:"type"`
	Visible     bool    `json:"visible"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Encoding    string  `json:"encoding,omitempty"`
	Compression string  `json:"compression,omitempty"`
}

// Tileset references the atlas image by relative path, never by
// embedded pixel data.
type Tileset struct {
	Columns     int    `json:"columns"`
	FirstGID    int    `json:"firstgid"`
	Image       string `json:"image"`
	ImageHeight int    `json:"imageheight"`
	ImageWidth  int    `json:"imagewidth"`
	Margin      int    `json:"margin"`
	Name        string `json:"name"`
	Spacing     int    `json:"spacing"`
	TileCount   int    `json:"tilecount"`
	TileHeight  int    `json:"tileheight"`
	TileWidth   int    `json:"tilewidth"`
}

// Property is a Tiled custom property.
type Property struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// GIDs converts a cell map's internal 0-based IDs to the exported
// 1-based references, where 0 means empty.
func GIDs(cells *tiles.CellMap) []uint32 {
	out := make([]uint32, len(cells.IDs))
	for i, id := range cells.IDs {
		if id != tiles.EmptyCell {
			out[i] = uint32(id + 1)
		}
	}
	return out
}

// NewMap assembles the grid-map document for cells referencing an atlas
// of tileCount tiles packed per layout, written to atlasPath.
func NewMap(cells *tiles.CellMap, layout tiles.Layout, tileCount int, atlasPath, tilesetName string, enc Encoding) (Map, error) {
	data, encoding, compression, err := EncodeLayerData(GIDs(cells), enc)
	if err != nil {
		return Map{}, err
	}
	atlasW, atlasH := layout.PixelSize()
	return Map{
		CompressionLevel: -1,
		Height:           cells.Height,
		Width:            cells.Width,
		Infinite:         false,
		Orientation:      Orientation,
		RenderOrder:      RenderOrder,
		TiledVersion:     TiledVersion,
		TileHeight:       layout.TileSize,
		TileWidth:        layout.TileSize,
		Type:             "map",
		Version:          FormatVersion,
		Layers: []Layer{{
			Data:        data,
			Height:      cells.Height,
			Width:       cells.Width,
			ID:          1,
			Name:        "terrain",
			Opacity:     1,
			Type:        "tilelayer",
			Visible:     true,
			X:           0,
			Y:           0,
			Encoding:    encoding,
			Compression: compression,
		}},
		Tilesets: []Tileset{{
			Columns:     layout.Columns,
			FirstGID:    1,
			Image:       atlasPath,
			ImageHeight: atlasH,
			ImageWidth:  atlasW,
			Margin:      0,
			Name:        tilesetName,
			Spacing:     0,
			TileCount:   tileCount,
			TileHeight:  layout.TileSize,
			TileWidth:   layout.TileSize,
		}},
	}, nil
}

// ScreenProperties returns the custom properties a segmented source
// carries on its map document; flat sources carry none.
func ScreenProperties(geo grid.Geometry) []Property {
	if geo.Layout != grid.LayoutSegmented {
		return nil
	}
	return []Property{
		{Name: "screen_width", Type: "int", Value: geo.RegionTilesX},
		{Name: "screen_height", Type: "int", Value: geo.RegionTilesY},
		{Name: "screens_wide", Type: "int", Value: geo.RegionsX},
		{Name: "screens_tall", Type: "int", Value: geo.RegionsY},
	}
}

// Marshal renders doc as the tool's canonical two-space-indented JSON.
// Identical inputs always produce identical bytes.
func Marshal(doc any) ([]byte, error) {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tiled: marshal: %w", err)
	}
	return b, nil
}

// Write marshals doc and writes it to path atomically.
func Write(path string, doc any) error {
	b, err := Marshal(doc)
	if err != nil {
		return err
	}
	if err := util.WriteFileAtomic(path, b); err != nil {
		return fmt.Errorf("tiled: %w", err)
	}
	return nil
}
