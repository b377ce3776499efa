package plasmidmap

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"math"

	"github.com/pkg/errors"
)

const (
	pngSigLen     = 8
	ihdrChunkLen  = 4 + 4 + 13 + 4 // length, type, data, crc
	metersPerInch = 0.0254
)

// EncodePNG writes img as a PNG carrying a pHYs chunk for dpi.
func EncodePNG(w io.Writer, img image.Image, dpi int) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return errors.Wrap(err, "png encode")
	}
	raw := buf.Bytes()
	if len(raw) < pngSigLen+ihdrChunkLen || string(raw[pngSigLen+4:pngSigLen+8]) != "IHDR" {
		return errors.New("png encode: unexpected stream layout")
	}
	// pHYs must precede the first IDAT; right after IHDR is always valid.
	split := pngSigLen + ihdrChunkLen
	if _, err := w.Write(raw[:split]); err != nil {
		return err
	}
	if _, err := w.Write(physChunk(dpi)); err != nil {
		return err
	}
	_, err := w.Write(raw[split:])
	return err
}

// physChunk returns a complete pHYs chunk for dpi, in pixels per meter.
func physChunk(dpi int) []byte {
	ppm := uint32(math.Round(float64(dpi) / metersPerInch))
	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:], 9)
	copy(chunk[4:], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:], ppm)
	binary.BigEndian.PutUint32(chunk[12:], ppm)
	chunk[16] = 1 // unit: meter
	binary.BigEndian.PutUint32(chunk[17:], crc32.ChecksumIEEE(chunk[4:17]))
	return chunk
}

// DPIOf returns the pixel density recorded in a PNG's pHYs chunk.
func DPIOf(r io.Reader) (dpi float64, ok bool, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, false, err
	}
	for off := pngSigLen; off+8 <= len(data); {
		n := int(binary.BigEndian.Uint32(data[off:]))
		typ := string(data[off+4 : off+8])
		if off+12+n > len(data) {
			return 0, false, errors.Errorf("png: truncated %s chunk", typ)
		}
		if typ == "pHYs" && n == 9 && data[off+16] == 1 {
			return float64(binary.BigEndian.Uint32(data[off+8:])) * metersPerInch, true, nil
		}
		if typ == "IDAT" {
			break
		}
		off += 12 + n
	}
	return 0, false, nil
}
