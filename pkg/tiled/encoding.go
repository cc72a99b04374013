package tiled

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Encoding selects how a layer's data is serialized.
type Encoding string

const (
	// EncodingCSV emits the plain JSON integer array.
	EncodingCSV Encoding = "csv"
	// EncodingBase64 emits little-endian uint32s, base64-encoded.
	EncodingBase64 Encoding = "base64"
	// EncodingBase64Gzip compresses with gzip before base64.
	EncodingBase64Gzip Encoding = "base64+gzip"
	// EncodingBase64Zlib compresses with zlib before base64.
	EncodingBase64Zlib Encoding = "base64+zlib"
	// EncodingBase64Zstd compresses with zstd before base64.
	EncodingBase64Zstd Encoding = "base64+zstd"
)

// EncodeLayerData serializes gids under enc and returns the layer's data
// value plus the encoding/compression strings the document carries
// (empty for the plain array form).
func EncodeLayerData(gids []uint32, enc Encoding) (data any, encoding, compression string, err error) {
	switch enc {
	case EncodingCSV, "":
		return gids, "", "", nil
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(packGIDs(gids)), "base64", "", nil
	case EncodingBase64Gzip:
		raw, err := gzipBytes(packGIDs(gids))
		if err != nil {
			return nil, "", "", fmt.Errorf("tiled: gzip layer data: %w", err)
		}
		return base64.StdEncoding.EncodeToString(raw), "base64", "gzip", nil
	case EncodingBase64Zlib:
		raw, err := zlibBytes(packGIDs(gids))
		if err != nil {
			return nil, "", "", fmt.Errorf("tiled: zlib layer data: %w", err)
		}
		return base64.StdEncoding.EncodeToString(raw), "base64", "zlib", nil
	case EncodingBase64Zstd:
		raw, err := zstdBytes(packGIDs(gids))
		if err != nil {
			return nil, "", "", fmt.Errorf("tiled: zstd layer data: %w", err)
		}
		return base64.StdEncoding.EncodeToString(raw), "base64", "zstd", nil
	}
	return nil, "", "", fmt.Errorf("%w: %q", ErrBadEncoding, enc)
}

// DecodeLayerData reverses EncodeLayerData. It accepts the plain array
// form (either []uint32 or the []any produced by generic JSON
// unmarshaling) and every base64 variant, and checks the result against
// the expected cell count.
func DecodeLayerData(data any, encoding, compression string, want int) ([]uint32, error) {
	switch encoding {
	case "", "csv":
		return decodeArray(data, want)
	case "base64":
		s, ok := data.(string)
		if !ok {
			return nil, fmt.Errorf("%w: base64 layer data is %T, not a string", ErrBadDocument, data)
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
		}
		switch compression {
		case "":
		case "gzip":
			raw, err = gunzipBytes(raw)
		case "zlib":
			raw, err = unzlibBytes(raw)
		case "zstd":
			raw, err = unzstdBytes(raw)
		default:
			return nil, fmt.Errorf("%w: compression %q", ErrBadEncoding, compression)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
		}
		if len(raw) != 4*want {
			return nil, fmt.Errorf("%w: %d data bytes for %d cells", ErrBadDocument, len(raw), want)
		}
		gids := make([]uint32, want)
		for i := range gids {
			gids[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
		return gids, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBadEncoding, encoding)
}

func decodeArray(data any, want int) ([]uint32, error) {
	var gids []uint32
	switch v := data.(type) {
	case []uint32:
		gids = v
	case []any:
		gids = make([]uint32, len(v))
		for i, e := range v {
			f, ok := e.(float64)
			if !ok || f < 0 || f > math.MaxUint32 || f != math.Trunc(f) {
				return nil, fmt.Errorf("%w: data[%d] = %v", ErrBadDocument, i, e)
			}
			gids[i] = uint32(f)
		}
	default:
		return nil, fmt.Errorf("%w: layer data is %T", ErrBadDocument, data)
	}
	if len(gids) != want {
		return nil, fmt.Errorf("%w: %d entries for %d cells", ErrBadDocument, len(gids), want)
	}
	return gids, nil
}

// packGIDs lays gids out as little-endian uint32s, the byte order layer
// data uses on the wire.
func packGIDs(gids []uint32) []byte {
	buf := make([]byte, 4*len(gids))
	for i, g := range gids {
		binary.LittleEndian.PutUint32(buf[i*4:], g)
	}
	return buf
}

func gzipBytes(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipBytes(raw []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func zlibBytes(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unzlibBytes(raw []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func zstdBytes(raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func unzstdBytes(raw []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(raw, nil)
}
