// Package fonts provides the embedded label fonts for poster rendering.
//
// The Go font family ships inside golang.org/x/image, so the binary needs no
// font files on disk and every machine renders labels identically.
package fonts

import (
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// FontFamily is the CSS font-family name used for embedded SVG fonts.
const FontFamily = "Go"

// FallbackFontFamily provides fallback fonts for viewers that ignore
// embedded @font-face rules.
const FallbackFontFamily = `'Go', 'Helvetica Neue', Arial, sans-serif`

// RegularTTF returns the regular-weight TTF data.
func RegularTTF() []byte { return goregular.TTF }

// BoldTTF returns the bold-weight TTF data.
func BoldTTF() []byte { return gobold.TTF }

// Parsed fonts (computed once on first access).
var (
	regular, bold       *truetype.Font
	parseErr            error
	parseOnce           sync.Once
	regularB64, boldB64 string
	base64Once          sync.Once
)

func parse() {
	regular, parseErr = truetype.Parse(goregular.TTF)
	if parseErr != nil {
		parseErr = fmt.Errorf("parse regular font: %w", parseErr)
		return
	}
	bold, parseErr = truetype.Parse(gobold.TTF)
	if parseErr != nil {
		parseErr = fmt.Errorf("parse bold font: %w", parseErr)
	}
}

// Face returns a font face of the given size in points, rasterized for dpi.
// Callers should Close the face when done.
func Face(size, dpi float64, isBold bool) (font.Face, error) {
	parseOnce.Do(parse)
	if parseErr != nil {
		return nil, parseErr
	}
	f := regular
	if isBold {
		f = bold
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	}), nil
}

// RegularBase64 returns the regular TTF as a base64 string.
// The result is cached after first computation.
func RegularBase64() string {
	base64Once.Do(encode)
	return regularB64
}

// BoldBase64 returns the bold TTF as a base64 string.
func BoldBase64() string {
	base64Once.Do(encode)
	return boldB64
}

func encode() {
	regularB64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	boldB64 = base64.StdEncoding.EncodeToString(gobold.TTF)
}
