// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package latex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeSpecials(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"50% & $10", `50\% \& \$10`},
		{"a_b #c", `a\_b \#c`},
		{"{braced}", `\{braced\}`},
		{`back\slash`, `back\textbackslash{}slash`},
		{"x^2 ~y", `x\^{}2 \~{}y`},
		{"a<b>c", `a\textless{}b\textgreater{}c`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.in, false), "Escape(%q)", tt.in)
	}
}

func TestEscapeAccents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Müller", `M\"uller`},
		{"García", `Garc\'ia`},
		{"Ångström", `\AA{}ngstr\"om`},
		{"Straße", `Stra\ss{}e`},
		{"naïve café", `na\"ive caf\'e`},
		{"em—dash en–dash", "em---dash en--dash"},
		{"“smart” ‘quotes’", "``smart'' `quotes'"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.in, false), "Escape(%q)", tt.in)
	}
}

func TestEscapeUnicodeMode(t *testing.T) {
	// Unicode mode keeps non-ASCII characters but still escapes specials.
	assert.Equal(t, "Müller", Escape("Müller", true))
	assert.Equal(t, `Müller \& Söhne`, Escape("Müller & Söhne", true))
}

func TestEscapeUnknownNonASCII(t *testing.T) {
	// Characters outside the accent table pass through even in ASCII mode.
	assert.Equal(t, "東京", Escape("東京", false))
}
