// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package names

import "testing"

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Segments
	}{
		{"no particle", "Curie", Segments{Family: "Curie"}},
		{"two plain words", "Day Lewis", Segments{Family: "Day Lewis"}},
		{"non-dropping", "van Gogh", Segments{NonDropping: "van", Family: "Gogh"}},
		{"dropping", "de Gaulle", Segments{Dropping: "de", Family: "Gaulle"}},
		{"multi-word run", "van der Berg", Segments{NonDropping: "van der", Family: "Berg"}},
		{"dropping run", "de la Cruz", Segments{Dropping: "de la", Family: "Cruz"}},
		{"first word class wins", "von de la Cruz", Segments{NonDropping: "von de la", Family: "Cruz"}},
		{"capitalized particle is family", "Van Gogh", Segments{Family: "Van Gogh"}},
		{"keeps at least one family word", "van der", Segments{NonDropping: "van", Family: "der"}},
		{"single word particle", "van", Segments{Family: "van"}},
		{"empty", "", Segments{Family: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Segment(tt.in)
			if got != tt.want {
				t.Errorf("Segment(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSegmentSecondPassStabilizes(t *testing.T) {
	// One pass takes the whole run under the first word's class; a second
	// pass over the remaining family finds nothing more to strip.
	first := Segment("de van Helsing")
	if first.Dropping != "de van" || first.Family != "Helsing" {
		t.Fatalf("first pass = %+v", first)
	}
	second := Segment(first.Family)
	if second != (Segments{Family: "Helsing"}) {
		t.Errorf("second pass = %+v, want plain family", second)
	}
}
