package scicalc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/njchilds90/scicalc/trig"
)

const TitleTrig = "Trigonometric Functions"

// Trig renders the trigonometric table for an angle typed in degrees. With
// shift on it shows the inverse functions.
func (c *Calculator) Trig(angle string, shift bool) Section {
	deg, err := parseNumber(angle)
	if err != nil {
		return newSection(TitleTrig, nil, fmt.Errorf("angle: %w", err))
	}
	tab, err := trig.Evaluate(deg, shift)
	if err != nil {
		return newSection(TitleTrig, nil, err)
	}
	lines := make([]Line, len(tab.Rows))
	for i, r := range tab.Rows {
		lines[i] = Line{Text: r.Text(c.opts.Precision), LaTeX: r.LaTeX(c.opts.Precision)}
	}
	return newSection(TitleTrig, lines, nil)
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return v, nil
}
