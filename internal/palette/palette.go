// Package palette picks display colours for team members.
package palette

import "slices"

var memberColors = []string{
	"#3B82F6", // blue
	"#10B981", // emerald
	"#F59E0B", // amber
	"#EF4444", // red
	"#8B5CF6", // violet
	"#EC4899", // pink
	"#06B6D4", // cyan
	"#84CC16", // lime
	"#F97316", // orange
	"#6366F1", // indigo
}

// Colors returns a copy of the member palette.
func Colors() []string {
	return slices.Clone(memberColors)
}

// Next returns the first palette colour not in used. When every colour is
// taken it cycles by the number of colours in use.
func Next(used []string) string {
	for _, c := range memberColors {
		if !slices.Contains(used, c) {
			return c
		}
	}
	return memberColors[len(used)%len(memberColors)]
}
