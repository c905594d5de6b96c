// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package names segments family names into name particles ("van", "de la")
// and the remaining family name proper. Particles are classified dropping
// or non-dropping following CSL conventions: only lowercase particles are
// recognized, so "Van Gogh" keeps its capitalized Van as family name.
package names

import "strings"

// Segments is the result of one segmentation pass over a family name.
type Segments struct {
	// NonDropping is a particle that stays with the family name when the
	// name is inverted ("van der Berg" -> "van der Berg, Jan").
	NonDropping string

	// Dropping is a particle dropped from sorting and optionally from
	// inverted forms ("de" in French names).
	Dropping string

	// Family is the remaining family name.
	Family string
}

// particleClass distinguishes the two particle kinds.
type particleClass int

const (
	nonDropping particleClass = iota
	dropping
)

// particles classifies known lowercase name particles. Multi-word
// particles are built up word by word; the class of the first word wins.
var particles = map[string]particleClass{
	"van": nonDropping, "von": nonDropping, "ten": nonDropping,
	"ter": nonDropping, "den": nonDropping, "der": nonDropping,
	"op": nonDropping, "af": nonDropping, "zu": nonDropping,
	"de": dropping, "del": dropping, "della": dropping, "delle": dropping,
	"di": dropping, "da": dropping, "du": dropping, "des": dropping,
	"la": dropping, "le": dropping, "las": dropping, "los": dropping,
	"dos": dropping, "el": dropping,
}

// Segment extracts one leading particle run from a family name. Callers
// that want fully stabilized parsing run Segment again on the returned
// Family and merge; a second pass picks up mixed-class prefixes like
// "von de la Cruz".
func Segment(family string) Segments {
	words := strings.Fields(family)
	if len(words) < 2 {
		return Segments{Family: strings.TrimSpace(family)}
	}

	first, ok := particles[words[0]]
	if !ok {
		return Segments{Family: strings.TrimSpace(family)}
	}

	// Extend the particle while subsequent words are also particles,
	// keeping at least one word as family name.
	n := 1
	for n < len(words)-1 {
		if _, ok := particles[words[n]]; !ok {
			break
		}
		n++
	}

	particle := strings.Join(words[:n], " ")
	rest := strings.Join(words[n:], " ")

	if first == dropping {
		return Segments{Dropping: particle, Family: rest}
	}
	return Segments{NonDropping: particle, Family: rest}
}
