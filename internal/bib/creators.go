// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bib

import (
	"strings"
	"unicode"

	"github.com/pdiddy/bibexport/internal/names"
	"github.com/pdiddy/bibexport/pkg/types"
)

// commaSuffixes are generational suffixes that request comma-before-suffix
// formatting for the whole document.
var commaSuffixes = map[string]bool{
	"sr": true, "jr": true, "ii": true, "iii": true, "iv": true,
}

func (r *Record) encodeCreators(f *Field) (string, bool, bool) {
	v, ok := f.Value.(Creators)
	if !ok || len(v) == 0 {
		return "", false, false
	}

	rendered := make([]string, 0, len(v))
	for _, c := range v {
		name, ok := r.renderCreator(c)
		if !ok {
			continue
		}
		rendered = append(rendered, name)
	}
	if len(rendered) == 0 {
		return "", false, false
	}
	return strings.Join(rendered, " and "), true, true
}

// renderCreator produces one name in "family, suffix, given" order.
// Organizations and literal names become a single unbreakable unit; raw
// records pass name parts through unescaped.
func (r *Record) renderCreator(c types.Creator) (string, bool) {
	if c.Name != "" {
		if r.raw {
			return "{" + c.Name + "}", true
		}
		return "{" + r.escape(c.Name) + "}", true
	}
	if c.Family == "" && c.Given == "" {
		return "", false
	}
	if r.raw {
		if c.Given == "" {
			return c.Family, true
		}
		return c.Family + ", " + c.Given, true
	}

	family := r.renderFamily(c.Family)

	var b strings.Builder
	b.WriteString(family)
	if c.Suffix != "" {
		if commaSuffixes[strings.ToLower(strings.TrimRight(c.Suffix, "."))] {
			r.engine.juniorComma.Store(true)
		}
		b.WriteString(", ")
		b.WriteString(r.escapeParts(c.Suffix))
	}
	if c.Given != "" {
		b.WriteString(", ")
		b.WriteString(r.escapeParts(c.Given))
	}
	return b.String(), true
}

// renderFamily resolves particles and orders them per dialect. A family
// name wrapped in double quotes is an unbreakable literal with the quotes
// stripped.
func (r *Record) renderFamily(family string) string {
	if family == "" {
		return ""
	}
	if len(family) > 1 && strings.HasPrefix(family, `"`) && strings.HasSuffix(family, `"`) {
		return "{" + r.escapeParts(family[1:len(family)-1]) + "}"
	}

	// Segmentation runs twice so mixed-class prefixes stabilize.
	first := names.Segment(family)
	second := names.Segment(first.Family)

	nonDropping := joinParticles(first.NonDropping, second.NonDropping)
	dropping := joinParticles(first.Dropping, second.Dropping)
	base := second.Family

	var b strings.Builder
	if dropping != "" {
		b.WriteString(r.escapeParts(postfixParticle(dropping)))
	}
	switch {
	case nonDropping == "":
		b.WriteString(r.escapeParts(base))
	case r.engine.cfg.Dialect == types.BibLaTeX:
		// Separate leading fragment, escaped on its own.
		b.WriteString(r.escapeParts(postfixParticle(nonDropping)))
		b.WriteString(r.escapeParts(base))
	default:
		// BibTeX keeps the particle joined onto the family name.
		b.WriteString(r.escapeParts(postfixParticle(nonDropping) + base))
	}
	return b.String()
}

// escapeParts splits text on the name separator tokens " and " and ","
// and escapes each fragment individually, keeping the separators literal.
// Fragments are joined with no separator of their own.
func (r *Record) escapeParts(s string) string {
	var b strings.Builder
	rest := s
	for rest != "" {
		andIdx := strings.Index(rest, " and ")
		commaIdx := strings.Index(rest, ",")

		idx, sep := -1, ""
		if andIdx >= 0 && (commaIdx < 0 || andIdx < commaIdx) {
			idx, sep = andIdx, " and "
		} else if commaIdx >= 0 {
			idx, sep = commaIdx, ","
		}
		if idx < 0 {
			b.WriteString(r.escape(rest))
			break
		}
		b.WriteString(r.escape(rest[:idx]))
		b.WriteString(sep)
		rest = rest[idx+len(sep):]
	}
	return b.String()
}

// postfixParticle appends the trailing space that separates a particle
// from the following name, unless the particle already ends in whitespace
// or punctuation. A particle ending in "." always gets exactly one space.
func postfixParticle(p string) string {
	if p == "" {
		return ""
	}
	last := rune(p[len(p)-1])
	if last == '.' {
		return p + " "
	}
	if unicode.IsSpace(last) || unicode.IsPunct(last) {
		return p
	}
	return p + " "
}

func joinParticles(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
