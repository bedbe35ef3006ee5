package engine

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z][A-Za-z0-9.]*)\s*\}\}`)

// Interpolate replaces {{variable}} placeholders in a template with values from vars.
// Unknown placeholders become empty. Substituted values are not expanded again, so
// bot text containing braces is emitted as written.
func Interpolate(template string, vars map[string]string) string {
	result := placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		return vars[name]
	})
	return strings.TrimSpace(result)
}

// Placeholders lists the variable names a template refers to, in order of appearance.
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		names = append(names, m[1])
	}
	return names
}
