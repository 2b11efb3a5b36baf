// Package style maps block type tags to presentation classes.
package style

import (
	"strings"

	"github.com/alimasry/blockedit/content"
)

// Classes is the CSS class list for each known tag. Tags missing from the
// table have no presentation.
var Classes = map[string]string{
	content.HeaderOne: "text-3xl font-extrabold mb-4",
	content.Bold:      "font-bold",
	content.Red:       "text-red-500",
	content.Underline: "underline",
}

// ClassName returns the CSS classes for t in tag order.
func ClassName(t content.Type) string {
	var parts []string
	for _, tag := range t.Tags() {
		if c, ok := Classes[tag]; ok {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}
