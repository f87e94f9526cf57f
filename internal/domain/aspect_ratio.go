package domain

import "strings"

// AspectRatio is one of the ten supported width:height designations.
type AspectRatio string

const (
	AspectRatio21x9 AspectRatio = "21:9"
	AspectRatio16x9 AspectRatio = "16:9"
	AspectRatio3x2  AspectRatio = "3:2"
	AspectRatio4x3  AspectRatio = "4:3"
	AspectRatio5x4  AspectRatio = "5:4"
	AspectRatio1x1  AspectRatio = "1:1"
	AspectRatio4x5  AspectRatio = "4:5"
	AspectRatio3x4  AspectRatio = "3:4"
	AspectRatio2x3  AspectRatio = "2:3"
	AspectRatio9x16 AspectRatio = "9:16"

	DefaultAspectRatio = AspectRatio1x1
)

var validAspectRatios = map[AspectRatio]struct{}{
	AspectRatio21x9: {}, AspectRatio16x9: {}, AspectRatio3x2: {}, AspectRatio4x3: {},
	AspectRatio5x4: {}, AspectRatio1x1: {}, AspectRatio4x5: {}, AspectRatio3x4: {},
	AspectRatio2x3: {}, AspectRatio9x16: {},
}

// ParseAspectRatio validates raw against the closed enumeration. An empty
// string is valid and means "not provided" — callers apply their own
// default.
func ParseAspectRatio(raw string) (AspectRatio, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", true
	}
	ar := AspectRatio(raw)
	_, ok := validAspectRatios[ar]
	return ar, ok
}

// CoerceAspectRatio returns ar if it is one of the ten recognized values,
// otherwise the default. Unlike ParseAspectRatio, this never rejects —
// the synthesis client uses it to resolve the one concrete value that it
// passes to both the primary and the fallback provider.
func CoerceAspectRatio(ar AspectRatio) AspectRatio {
	if _, ok := validAspectRatios[ar]; ok {
		return ar
	}
	return DefaultAspectRatio
}
