package paint

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/vango-dev/tessera/pkg/value"
)

// Unit is the unit of a Size.
type Unit uint8

const (
	UnitPixels Unit = iota
	UnitPercentage
	UnitEm
)

// String returns the CSS suffix of the unit.
func (u Unit) String() string {
	switch u {
	case UnitPercentage:
		return "%"
	case UnitEm:
		return "em"
	default:
		return "px"
	}
}

// Size is a length carried through the paint protocol. A negative Value
// means "unset".
type Size struct {
	Value float64
	Unit  Unit
}

// Unset is the default size sentinel.
var Unset = Size{Value: -1}

// Px returns a pixel size.
func Px(v float64) Size { return Size{Value: v, Unit: UnitPixels} }

// Percent returns a percentage size.
func Percent(v float64) Size { return Size{Value: v, Unit: UnitPercentage} }

// IsUnset reports whether s is the default sentinel.
func (s Size) IsUnset() bool { return s.Value < 0 }

// String formats the size as "100px", "50%".
func (s Size) String() string {
	if s.IsUnset() {
		return ""
	}
	return strconv.FormatFloat(s.Value, 'f', -1, 64) + s.Unit.String()
}

// WireValue returns the wire value of s: Null when unset.
func (s Size) WireValue() value.Value {
	if s.IsUnset() {
		return value.Null()
	}
	return value.String(s.String())
}

// ErrBadSize is returned by ParseSize for malformed input.
var ErrBadSize = errors.New("paint: malformed size")

// ParseSize parses "100px", "50%", "1.5em" or a bare number (pixels). The
// empty string parses as Unset.
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unset, nil
	}
	unit := UnitPixels
	switch {
	case strings.HasSuffix(s, "%"):
		unit, s = UnitPercentage, strings.TrimSuffix(s, "%")
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "em"):
		unit, s = UnitEm, strings.TrimSuffix(s, "em")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return Unset, ErrBadSize
	}
	return Size{Value: f, Unit: unit}, nil
}

// AddSize writes a size attribute, omitting it when unset.
func AddSize(t Target, name string, s Size) {
	t.AddAttribute(name, s.WireValue())
}

// Alignment places a child inside its cell.
type Alignment uint8

const (
	AlignUnset Alignment = iota
	AlignTopLeft
	AlignTopCenter
	AlignTopRight
	AlignMiddleLeft
	AlignMiddleCenter
	AlignMiddleRight
	AlignBottomLeft
	AlignBottomCenter
	AlignBottomRight
)

var alignmentNames = [...]string{
	AlignUnset:        "",
	AlignTopLeft:      "top-left",
	AlignTopCenter:    "top-center",
	AlignTopRight:     "top-right",
	AlignMiddleLeft:   "middle-left",
	AlignMiddleCenter: "middle-center",
	AlignMiddleRight:  "middle-right",
	AlignBottomLeft:   "bottom-left",
	AlignBottomCenter: "bottom-center",
	AlignBottomRight:  "bottom-right",
}

// String returns the wire name of the alignment.
func (a Alignment) String() string {
	if int(a) < len(alignmentNames) {
		return alignmentNames[a]
	}
	return ""
}

// AddAlignment writes an alignment attribute, omitting it when unset.
func AddAlignment(t Target, name string, a Alignment) {
	if s := a.String(); s != "" {
		t.AddAttribute(name, value.String(s))
	}
}
