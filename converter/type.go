package converter

import (
	"fmt"
	"strings"
)

// Type is a container format, held as its canonical uppercase token.
type Type struct {
	s string
}

var (
	WEBP = Type{"WEBP"}
	JPEG = Type{"JPEG"}
	PNG  = Type{"PNG"}
	BMP  = Type{"BMP"}
	GIF  = Type{"GIF"}
	TIFF = Type{"TIFF"}
)

// ConvertTargets lists the formats a client may request as a conversion target.
var ConvertTargets = []Type{WEBP, JPEG, PNG, BMP}

func (t Type) String() string {
	return t.s
}

// Lower is the lowercase token used in media types and file extensions.
func (t Type) Lower() string {
	return strings.ToLower(t.s)
}

func (t Type) MediaType() string {
	return "image/" + t.Lower()
}

// IsLossy reports whether the encoder for t takes a quality setting.
func (t Type) IsLossy() bool {
	return t == JPEG || t == WEBP
}

func (t Type) IsConvertTarget() bool {
	for _, c := range ConvertTargets {
		if c == t {
			return true
		}
	}
	return false
}

// MakeFromString accepts any casing; "jpg" and "tif" are taken as aliases
// since decoders report them that way.
func MakeFromString(s string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case WEBP.s:
		return WEBP, nil
	case JPEG.s, "JPG":
		return JPEG, nil
	case PNG.s:
		return PNG, nil
	case BMP.s:
		return BMP, nil
	case GIF.s:
		return GIF, nil
	case TIFF.s, "TIF":
		return TIFF, nil
	}

	return Type{}, fmt.Errorf("unknown type: %s", s)
}
