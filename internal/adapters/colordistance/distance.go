// Package colordistance provides the perceptual color distance the matcher
// scores hex evidence with.
package colordistance

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/fr0stylo/lacquer/internal/app/domain"
	"github.com/fr0stylo/lacquer/internal/app/ports"
)

// CIEDE2000 returns the ΔE00 distance between two hex colors in the usual
// 0..100 scale. Identical colors are 0; a difference near 2 is just visible.
func CIEDE2000(hexA, hexB string) (float64, error) {
	a, err := parse(hexA)
	if err != nil {
		return 0, err
	}
	b, err := parse(hexB)
	if err != nil {
		return 0, err
	}
	// go-colorful works on L in 0..1, so its distances are a hundredth of ΔE00.
	return a.DistanceCIEDE2000(b) * 100, nil
}

func parse(raw string) (colorful.Color, error) {
	normalized, ok := domain.NormalizeHex(raw)
	if !ok {
		return colorful.Color{}, fmt.Errorf("invalid hex color %q", raw)
	}
	c, err := colorful.Hex(normalized)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("parse hex color %q: %w", raw, err)
	}
	return c, nil
}

var _ ports.ColorDistance = CIEDE2000
