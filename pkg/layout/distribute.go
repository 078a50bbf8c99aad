package layout

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/moocn/pkg/errors"
)

// precision is the decimal scale offsets and sizes are rounded to.
const precision = 1e6

// Justify selects how the free space between slots is distributed.
type Justify int

const (
	SpaceBetween Justify = iota
	SpaceAround
	SpaceEvenly
)

var justifyNames = map[Justify]string{
	SpaceBetween: "space-between",
	SpaceAround:  "space-around",
	SpaceEvenly:  "space-evenly",
}

func (j Justify) String() string {
	if s, ok := justifyNames[j]; ok {
		return s
	}
	return fmt.Sprintf("Justify(%d)", int(j))
}

// ParseJustify parses "space-between", "space-around" or "space-evenly".
// The "space-" prefix is optional.
func ParseJustify(s string) (Justify, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SpaceBetween, nil
	}
	if !strings.HasPrefix(s, "space-") {
		s = "space-" + s
	}
	for j, name := range justifyNames {
		if name == s {
			return j, nil
		}
	}
	return SpaceBetween, errors.New(errors.ErrCodeInvalidOption, "unknown justify %q", s)
}

// Slot is a sub-interval of [0,1].
type Slot struct {
	Offset float64
	Size   float64
}

// End returns the right edge of the slot.
func (s Slot) End() float64 { return s.Offset + s.Size }

// Distribute splits [0,1] into count slots that together occupy sizeFactor
// of the interval. sizeFactor is clamped into [0,1]; NaN counts as 0.
// A count below 1 yields nil.
func Distribute(count int, sizeFactor float64, justify Justify) []Slot {
	if count < 1 {
		return nil
	}
	slots := make([]Slot, count)
	for i := range slots {
		slots[i] = DistributeOne(count, sizeFactor, justify, i)
	}
	return slots
}

// DistributeOne returns slot idx of [Distribute] without building the
// others.
func DistributeOne(count int, sizeFactor float64, justify Justify, idx int) Slot {
	if count < 1 {
		return Slot{}
	}
	s := clampFraction(sizeFactor)
	space := 1 - s

	var gap, lead float64
	switch justify {
	case SpaceAround:
		gap = space / float64(count)
		lead = gap / 2
	case SpaceEvenly:
		gap = space / float64(count+1)
		lead = gap
	default:
		gap = space / float64(count-1)
		lead = 0
	}
	if math.IsNaN(gap) || math.IsInf(gap, 0) {
		gap = 0
	}

	size := s / float64(count)
	return Slot{
		Offset: round(lead + float64(idx)*(size+gap)),
		Size:   round(size),
	}
}

func clampFraction(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func round(v float64) float64 {
	return math.Round(v*precision) / precision
}
