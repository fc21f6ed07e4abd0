package render

import (
	"encoding/json"

	"github.com/matzehuels/wobble/pkg/errors"
	"github.com/matzehuels/wobble/pkg/heart"
	"github.com/matzehuels/wobble/pkg/poster"
)

type jsonOutput struct {
	Seed       uint64            `json:"seed"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	Background string            `json:"background"`
	Palette    []string          `json:"palette"`
	Config     poster.Config     `json:"config"`
	Shapes     []jsonShape       `json:"shapes"`
	Labels     []poster.Label    `json:"labels,omitempty"`
	Log        []poster.ShapeLog `json:"log"`
}

type jsonShape struct {
	Color   string        `json:"color"`
	Opacity float64       `json:"opacity"`
	Points  []heart.Point `json:"points"`
}

// RenderJSON exports the scene: seed, configuration, palette, every outline
// in draw order and the per-shape draw log. Widths are in inches.
func RenderJSON(p *poster.Poster) ([]byte, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInvalidArgument, "poster is required")
	}
	out := jsonOutput{
		Seed:       p.Seed,
		Width:      poster.AspectWidth,
		Height:     poster.AspectHeight,
		Background: p.Background.Hex(),
		Palette:    p.Palette.Hex(),
		Config:     p.Config,
		Shapes:     make([]jsonShape, len(p.Shapes)),
		Labels:     p.Labels,
		Log:        p.Log(),
	}
	for i, s := range p.Shapes {
		out.Shapes[i] = jsonShape{
			Color:   s.Color.Hex(),
			Opacity: s.Opacity,
			Points:  s.Outline,
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderingFailure, err, "encode json")
	}
	return data, nil
}
