package lightborne

import (
	"fmt"
	"image/color"
	"strings"
)

type LightColor int

const (
	LightGreen LightColor = iota
	LightRed
	LightWhite
	LightBlue

	numLightColors = 4
)

var AllLightColors = [numLightColors]LightColor{LightGreen, LightRed, LightWhite, LightBlue}

func (c LightColor) String() string {
	switch c {
	case LightGreen:
		return "green"
	case LightRed:
		return "red"
	case LightWhite:
		return "white"
	case LightBlue:
		return "blue"
	}
	return fmt.Sprintf("LightColor(%d)", int(c))
}

// ParseLightColor accepts the lower-case names used in level files.
func ParseLightColor(s string) (LightColor, error) {
	for _, c := range AllLightColors {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown light color %q", s)
}

func (c LightColor) valid() bool {
	return c >= 0 && c < numLightColors
}

func (c LightColor) mustBeValid() {
	if !c.valid() {
		panic(fmt.Sprintf("invalid light color %d", int(c)))
	}
}

// Bounces is the number of reflections a beam of this color may take after
// its initial cast.
func (c LightColor) Bounces() int {
	c.mustBeValid()
	if c == LightRed {
		return 2
	}
	return 1
}

// RayGroups is the collision membership/filter used when casting this
// color. White beams ignore other beams, colored beams reflect off white
// ones.
func (c LightColor) RayGroups() CollisionGroups {
	c.mustBeValid()
	switch c {
	case LightWhite:
		return NewCollisionGroups(GroupWhiteRay, GroupTerrain|GroupLightSensor)
	case LightBlue:
		return NewCollisionGroups(GroupBlueRay, GroupTerrain|GroupLightSensor|GroupWhiteRay)
	}
	return NewCollisionGroups(GroupLightRay, GroupTerrain|GroupLightSensor|GroupWhiteRay)
}

// RGBA is the debug draw color of the beam.
func (c LightColor) RGBA() color.RGBA {
	c.mustBeValid()
	switch c {
	case LightRed:
		return color.RGBA{R: 255, G: 0, B: 160, A: 255}
	case LightGreen:
		return color.RGBA{R: 160, G: 255, B: 0, A: 255}
	case LightBlue:
		return color.RGBA{R: 40, G: 120, B: 255, A: 255}
	}
	return color.RGBA{R: 255, G: 255, B: 255, A: 255}
}

func (c LightColor) MarshalText() ([]byte, error) {
	if !c.valid() {
		return nil, fmt.Errorf("invalid light color %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *LightColor) UnmarshalText(text []byte) error {
	parsed, err := ParseLightColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
