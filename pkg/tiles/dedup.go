package tiles

import (
	"errors"
	"fmt"
	"image"

	"github.com/jpfielding/tilemap.go/pkg/grid"
)

// ErrNoTiles is returned when extraction yields zero tiles.
var ErrNoTiles = errors.New("tiles: no tiles extracted")

// Table assigns dense integer IDs to unique tiles in strict first-seen
// order. It pairs a fingerprint map for lookup with an ordered slice of
// blocks, so ordering never rests on map iteration order. The table is
// append-only during a scan and read-only afterward.
type Table struct {
	ids    map[Fingerprint]int
	blocks []*image.NRGBA
}

// NewTable returns an empty identity table.
func NewTable() *Table {
	return &Table{ids: make(map[Fingerprint]int)}
}

// Add returns the ID for the block's pixel content, assigning the next
// dense ID on first sight. IDs never change once assigned.
func (t *Table) Add(block *image.NRGBA) int {
	fp := BlockFingerprint(block)
	if id, ok := t.ids[fp]; ok {
		return id
	}
	id := len(t.blocks)
	t.ids[fp] = id
	t.blocks = append(t.blocks, block)
	return id
}

// Lookup returns the ID assigned to fp, if any.
func (t *Table) Lookup(fp Fingerprint) (int, bool) {
	id, ok := t.ids[fp]
	return id, ok
}

// Len returns the number of unique tiles.
func (t *Table) Len() int {
	return len(t.blocks)
}

// Blocks returns the unique tiles in ID order. The slice is shared;
// treat it as read-only.
func (t *Table) Blocks() []*image.NRGBA {
	return t.blocks
}

// Block returns the unique tile with the given ID.
func (t *Table) Block(id int) *image.NRGBA {
	return t.blocks[id]
}

// EmptyCell marks a grid position not covered by the source image.
const EmptyCell = -1

// CellMap records the tile ID at every grid position, row-major.
// Positions the extractor never visited hold EmptyCell.
type CellMap struct {
	Width  int
	Height int
	IDs    []int
}

// NewCellMap allocates a w×h map with every cell empty.
func NewCellMap(w, h int) *CellMap {
	ids := make([]int, w*h)
	for i := range ids {
		ids[i] = EmptyCell
	}
	return &CellMap{Width: w, Height: h, IDs: ids}
}

// Set records id at (x, y).
func (m *CellMap) Set(x, y, id int) {
	m.IDs[y*m.Width+x] = id
}

// At returns the ID at (x, y).
func (m *CellMap) At(x, y int) int {
	return m.IDs[y*m.Width+x]
}

// Deduplicate extracts every cell of src in raster order and collapses
// pixel-identical tiles. It returns the frozen identity table, the cell
// map sized to the declared grid, and the count of cells skipped because
// the source image did not cover them. A scan that yields no tiles at
// all fails with ErrNoTiles.
func Deduplicate(src *image.NRGBA, geo grid.Geometry) (*Table, *CellMap, int, error) {
	gw, gh := geo.GridSize()
	table := NewTable()
	cells := NewCellMap(gw, gh)
	skipped, err := Extract(src, geo, func(c Cell, block *image.NRGBA) error {
		cells.Set(c.X, c.Y, table.Add(block))
		return nil
	})
	if err != nil {
		return nil, nil, skipped, err
	}
	if table.Len() == 0 {
		return nil, nil, skipped, fmt.Errorf("%w: %dx%d grid entirely outside a %dx%d image",
			ErrNoTiles, gw, gh, src.Bounds().Dx(), src.Bounds().Dy())
	}
	return table, cells, skipped, nil
}
