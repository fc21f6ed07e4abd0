package render

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"math"

	"github.com/matzehuels/wobble/pkg/errors"
)

const (
	pngSignatureLen = 8
	ihdrChunkLen    = 4 + 4 + 13 + 4 // length, type, data, crc
	metersPerInch   = 0.0254
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// withPhysicalSize inserts a pHYs chunk after IHDR so viewers and printers
// see the intended resolution. image/png never writes one.
func withPhysicalSize(png []byte, dpi float64) ([]byte, error) {
	if len(png) < pngSignatureLen+ihdrChunkLen || !bytes.Equal(png[:pngSignatureLen], pngSignature) {
		return nil, errors.New(errors.ErrCodeRenderingFailure, "malformed png stream")
	}
	ppm := uint32(math.Round(dpi / metersPerInch))

	data := make([]byte, 9)
	binary.BigEndian.PutUint32(data[0:4], ppm)
	binary.BigEndian.PutUint32(data[4:8], ppm)
	data[8] = 1 // unit: meter

	chunk := make([]byte, 0, 4+4+len(data)+4)
	chunk = binary.BigEndian.AppendUint32(chunk, uint32(len(data)))
	chunk = append(chunk, "pHYs"...)
	chunk = append(chunk, data...)
	chunk = binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))

	at := pngSignatureLen + ihdrChunkLen
	out := make([]byte, 0, len(png)+len(chunk))
	out = append(out, png[:at]...)
	out = append(out, chunk...)
	out = append(out, png[at:]...)
	return out, nil
}

// PhysicalDPI reads the resolution from a PNG's pHYs chunk.
// It returns false when the chunk is absent or not in meters.
func PhysicalDPI(png []byte) (float64, bool) {
	if len(png) < pngSignatureLen || !bytes.Equal(png[:pngSignatureLen], pngSignature) {
		return 0, false
	}
	for off := pngSignatureLen; off+8 <= len(png); {
		n := int(binary.BigEndian.Uint32(png[off : off+4]))
		typ := string(png[off+4 : off+8])
		end := off + 8 + n + 4
		if end > len(png) {
			return 0, false
		}
		if typ == "pHYs" && n == 9 {
			data := png[off+8 : off+8+n]
			if data[8] != 1 {
				return 0, false
			}
			ppm := binary.BigEndian.Uint32(data[0:4])
			return float64(ppm) * metersPerInch, true
		}
		if typ == "IDAT" {
			return 0, false
		}
		off = end
	}
	return 0, false
}
