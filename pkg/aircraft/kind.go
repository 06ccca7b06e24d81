package aircraft

import (
	"fmt"
	"strings"
)

// Kind distinguishes the component types.
type Kind int

const (
	KindWing Kind = iota
	KindFuselage
)

func (k Kind) String() string {
	switch k {
	case KindWing:
		return "wing"
	case KindFuselage:
		return "fuselage"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts "wing" and "fuselage" (case-insensitive).
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wing", "wings":
		return KindWing, nil
	case "fuselage", "fuselages":
		return KindFuselage, nil
	}
	return 0, fmt.Errorf("unknown component kind %q, expected wing or fuselage", s)
}

// Surface names a parametric surface of a segment.
type Surface int

const (
	SurfaceUpper Surface = iota // wing upper skin
	SurfaceLower                // wing lower skin
	SurfaceChord                // wing chord surface
	SurfaceOuter                // fuselage outer skin
)

func (s Surface) String() string {
	switch s {
	case SurfaceUpper:
		return "upper"
	case SurfaceLower:
		return "lower"
	case SurfaceChord:
		return "chord"
	case SurfaceOuter:
		return "outer"
	default:
		return fmt.Sprintf("Surface(%d)", int(s))
	}
}

// ParseSurface accepts the names returned by Surface.String.
func ParseSurface(s string) (Surface, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upper":
		return SurfaceUpper, nil
	case "lower":
		return SurfaceLower, nil
	case "chord":
		return SurfaceChord, nil
	case "outer":
		return SurfaceOuter, nil
	}
	return 0, fmt.Errorf("unknown surface %q, expected upper, lower, chord or outer", s)
}
