// Package tiles implements the core world-map transform: walking a
// source image's grid cells in raster order, collapsing pixel-identical
// tiles to dense first-seen IDs, and packing the unique tiles into an
// atlas image.
package tiles

import (
	"crypto/sha256"
	"image"
)

// Fingerprint is a digest of a tile's exact pixel bytes. Blocks with
// identical pixel content always produce identical fingerprints; this is
// the sole equality criterion for deduplication.
type Fingerprint [32]byte

// BlockFingerprint digests a tile's raw NRGBA bytes.
func BlockFingerprint(img *image.NRGBA) Fingerprint {
	b := img.Bounds()
	if img.Stride == 4*b.Dx() && b.Min == (image.Point{}) {
		return sha256.Sum256(img.Pix[:4*b.Dx()*b.Dy()])
	}
	h := sha256.New()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		h.Write(img.Pix[off : off+4*b.Dx()])
	}
	var fp Fingerprint
	h.Sum(fp[:0])
	return fp
}

// Cell locates one grid cell by its global tile coordinates.
type Cell struct {
	X int
	Y int
}
