// Package placeholder finds and substitutes {%name%} markers in page templates.
package placeholder

import (
	"fmt"
	"regexp"
	"strings"
)

// pattern is non-greedy and does not cross line breaks
var pattern = regexp.MustCompile(`\{%(.*?)%\}`)

// LookupFunc resolves one placeholder name. ok=false means the name has no value.
type LookupFunc func(name string) (value string, ok bool, err error)

// MissingText is substituted for names without a value
func MissingText(name string) string {
	return fmt.Sprintf("Error: SSR variable %s not found", name)
}

// Placeholder is one occurrence of a marker in a template
type Placeholder struct {
	Name  string
	Start int
	End   int
}

// Find returns every occurrence in src, in order
func Find(src string) []Placeholder {
	matches := pattern.FindAllStringSubmatchIndex(src, -1)
	out := make([]Placeholder, 0, len(matches))
	for _, m := range matches {
		out = append(out, Placeholder{
			Name:  strings.TrimSpace(src[m[2]:m[3]]),
			Start: m[0],
			End:   m[1],
		})
	}
	return out
}

// Names returns the distinct placeholder names in src, in order of first use
func Names(src string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, p := range Find(src) {
		if !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	return names
}

// Render replaces every occurrence in src with its looked-up value.
// Each occurrence is looked up on its own, even when a name repeats.
// Substituted values are inserted as-is and never scanned again.
// The first lookup error aborts rendering and is returned as is.
func Render(src string, lookup LookupFunc) (string, error) {
	found := Find(src)
	if len(found) == 0 {
		return src, nil
	}

	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, p := range found {
		b.WriteString(src[last:p.Start])

		value, ok, err := lookup(p.Name)
		if err != nil {
			return "", err
		}
		if !ok {
			value = MissingText(p.Name)
		}
		b.WriteString(value)
		last = p.End
	}
	b.WriteString(src[last:])
	return b.String(), nil
}
