package domain

import "math/rand/v2"

// ErrorColor is the theme color forced while the widget shows the fallback quote.
const ErrorColor = "#F56F26"

var palette = []string{
	"#485440",
	"#697C5F",
	"#643A6B",
	"#5F264A",
	"#6854C0",
	"#088395",
	"#577D86",
	"#5D5167",
	"#756957",
	"#2E4F4F",
	"#9D5858",
	"#645978",
	"#0F6292",
	"#205E61",
	"#544BB4",
	"#475871",
	"#820000",
	"#8D3565",
	"#604234",
	"#2F3D6F",
}

// Palette returns the theme colors a successful fetch can pick from.
func Palette() []string {
	out := make([]string, len(palette))
	copy(out, palette)
	return out
}

// PickColor returns a random palette color different from current.
// A nil r uses the global source.
func PickColor(current string, r *rand.Rand) string {
	candidates := make([]string, 0, len(palette))
	for _, c := range palette {
		if c != current {
			candidates = append(candidates, c)
		}
	}

	if r == nil {
		return candidates[rand.IntN(len(candidates))] //nolint:gosec // cosmetic choice
	}

	return candidates[r.IntN(len(candidates))]
}
