// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package latex escapes plain text for inclusion in BibTeX/BibLaTeX field
// values. It is a pure text-to-text transform: the record engine decides
// when to call it, this package only knows how characters map.
package latex

import "strings"

// specials maps ASCII characters that carry LaTeX meaning to their escaped
// forms. Backslash and the caret/tilde accents need an empty group so the
// following character is not swallowed.
var specials = map[rune]string{
	'#':  `\#`,
	'$':  `\$`,
	'%':  `\%`,
	'&':  `\&`,
	'_':  `\_`,
	'{':  `\{`,
	'}':  `\}`,
	'\\': `\textbackslash{}`,
	'^':  `\^{}`,
	'~':  `\~{}`,
	'<':  `\textless{}`,
	'>':  `\textgreater{}`,
}

// accents maps common non-ASCII characters to ASCII-only LaTeX commands,
// used when the export must stay within 7-bit ASCII. The table covers the
// Latin-1 accented range plus the punctuation that shows up in imported
// metadata; characters without an entry are kept as-is.
var accents = map[rune]string{
	'á': `\'a`, 'à': "\\`a", 'â': `\^a`, 'ä': `\"a`, 'ã': `\~a`, 'å': `\aa{}`,
	'é': `\'e`, 'è': "\\`e", 'ê': `\^e`, 'ë': `\"e`,
	'í': `\'i`, 'ì': "\\`i", 'î': `\^i`, 'ï': `\"i`,
	'ó': `\'o`, 'ò': "\\`o", 'ô': `\^o`, 'ö': `\"o`, 'õ': `\~o`, 'ø': `\o{}`,
	'ú': `\'u`, 'ù': "\\`u", 'û': `\^u`, 'ü': `\"u`,
	'ý': `\'y`, 'ÿ': `\"y`,
	'ñ': `\~n`, 'ç': `\c{c}`, 'ß': `\ss{}`,
	'Á': `\'A`, 'À': "\\`A", 'Â': `\^A`, 'Ä': `\"A`, 'Ã': `\~A`, 'Å': `\AA{}`,
	'É': `\'E`, 'È': "\\`E", 'Ê': `\^E`, 'Ë': `\"E`,
	'Í': `\'I`, 'Ì': "\\`I", 'Î': `\^I`, 'Ï': `\"I`,
	'Ó': `\'O`, 'Ò': "\\`O", 'Ô': `\^O`, 'Ö': `\"O`, 'Õ': `\~O`, 'Ø': `\O{}`,
	'Ú': `\'U`, 'Ù': "\\`U", 'Û': `\^U`, 'Ü': `\"U`,
	'Ñ': `\~N`, 'Ç': `\c{C}`,
	'æ': `\ae{}`, 'Æ': `\AE{}`, 'œ': `\oe{}`, 'Œ': `\OE{}`,
	'–': `--`, '—': `---`,
	'‘': "`", '’': `'`, '“': "``", '”': `''`,
	'…': `\dots{}`, ' ': `~`,
}

// Escape transforms text into LaTeX-safe form. With unicode set, non-ASCII
// characters pass through untouched; otherwise they are rewritten through
// the accent table where an entry exists.
func Escape(text string, unicode bool) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if esc, ok := specials[r]; ok {
			b.WriteString(esc)
			continue
		}
		if !unicode && r > 0x7e {
			if esc, ok := accents[r]; ok {
				b.WriteString(esc)
				continue
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}
