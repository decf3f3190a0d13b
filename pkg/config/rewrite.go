package config

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rewrite maps request paths matching Pattern to Replacement.
// Replacement may carry a query string and back-references ($1, ${1}, ${name}, \1).
type Rewrite struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`

	// compiled form (set by Compile())
	re       *regexp.Regexp
	template string
}

// Compile compiles the pattern and normalizes the replacement template
func (r *Rewrite) Compile() error {
	re, err := regexp.Compile(r.Pattern)
	if err != nil {
		return fmt.Errorf("invalid rewrite pattern %q: %w", r.Pattern, err)
	}
	r.re = re
	r.template = expandTemplate(r.Replacement)
	return nil
}

// Apply rewrites path and reports whether the pattern matched.
// A rule that does not match leaves path unchanged and still yields it as
// the candidate, so the caller attempts the original path at that position.
func (r Rewrite) Apply(path string) (string, bool) {
	if r.re == nil || !r.re.MatchString(path) {
		return path, false
	}
	return r.re.ReplaceAllString(path, r.template), true
}

// Compiled reports whether Compile has run successfully
func (r Rewrite) Compiled() bool {
	return r.re != nil
}

// Rewrites is an ordered list of rewrite rules
type Rewrites []Rewrite

// Compile compiles every rule in order
func (rs Rewrites) Compile() error {
	for i := range rs {
		if err := rs[i].Compile(); err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalYAML accepts either an ordered mapping (pattern: replacement), as
// used by phpconfig.json, or a sequence of {pattern, replacement} objects.
// Document order is preserved in both forms.
func (rs *Rewrites) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(Rewrites, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			var pattern, replacement string
			if err := node.Content[i].Decode(&pattern); err != nil {
				return fmt.Errorf("rewrite pattern: %w", err)
			}
			if err := node.Content[i+1].Decode(&replacement); err != nil {
				return fmt.Errorf("rewrite replacement for %q: %w", pattern, err)
			}
			out = append(out, Rewrite{Pattern: pattern, Replacement: replacement})
		}
		*rs = out
		return nil
	case yaml.SequenceNode:
		var list []Rewrite
		if err := node.Decode(&list); err != nil {
			return err
		}
		*rs = list
		return nil
	case yaml.ScalarNode:
		// null or empty
		if node.Tag == "!!null" || node.Value == "" {
			*rs = nil
			return nil
		}
	}
	return fmt.Errorf("rewrites must be a mapping or a sequence (line %d)", node.Line)
}

// MarshalYAML writes the rules back as an ordered mapping
func (rs Rewrites) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, r := range rs {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Pattern},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: r.Replacement},
		)
	}
	return node, nil
}

// expandTemplate converts a replacement into regexp.Expand syntax.
// \N and $N become ${N} (at most two digits), ${...} is kept, and any other
// $ is escaped so it is copied literally.
func expandTemplate(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case (c == '\\' || c == '$') && i+1 < len(s) && isDigit(s[i+1]):
			j := i + 2
			if j < len(s) && isDigit(s[j]) {
				j++
			}
			b.WriteString("${" + s[i+1:j] + "}")
			i = j - 1
		case c == '$' && i+1 < len(s) && s[i+1] == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				b.WriteString("$$")
				continue
			}
			b.WriteString(s[i : i+end+1])
			i += end
		case c == '$':
			b.WriteString("$$")
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
