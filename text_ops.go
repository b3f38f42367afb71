// SPDX-License-Identifier: GPL-3.0-or-later

package boon

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TextInterpolate implements `TEXT { literal {value} literal … }`
// (§4.3, §6 glossary): concatenates alternating literal segments and
// stringified values, in source order. parts holds the literal segments
// (len(parts) == len(values)+1); values holds the interpolated
// expressions' results.
func TextInterpolate(parts []string, values []Value) Text {
	var b strings.Builder
	for i, p := range parts {
		b.WriteString(p)
		if i < len(values) {
			b.WriteString(FormatValue(values[i]))
		}
	}
	return Text(b.String())
}

// TextConcat implements `Text/concat`.
func TextConcat(a, b Text) Text {
	return a + b
}

// TextLen implements `Text/len`, measured in runes, matching the
// lexer's own UTF-8 rune-indexed positions (§4.1).
func TextLen(t Text) Number {
	return Number(len([]rune(string(t))))
}

// toUpperCaser and toLowerCaser are locale-aware casers; und (undetermined
// locale) gives Unicode-correct casing without assuming a specific
// language's special-casing rules (e.g. Turkish dotless i), matching a
// language runtime's "no implicit locale" design stance.
var (
	toUpperCaser = cases.Upper(language.Und)
	toLowerCaser = cases.Lower(language.Und)
)

// TextToUpper implements `Text/to_upper`.
func TextToUpper(t Text) Text {
	return Text(toUpperCaser.String(string(t)))
}

// TextToLower implements `Text/to_lower`.
func TextToLower(t Text) Text {
	return Text(toLowerCaser.String(string(t)))
}

// TextTrim implements `Text/trim`: strips leading and trailing Unicode
// whitespace.
func TextTrim(t Text) Text {
	return Text(strings.TrimSpace(string(t)))
}

// TextSplit implements `Text/split`: splits t on every occurrence of sep,
// producing a [*List] of [Text] with freshly minted list-item identity
// (there is no stable producer-side position for a split's output).
func TextSplit(producerID PersistenceId, t, sep Text) *List {
	parts := strings.Split(string(t), string(sep))
	items := make([]ListItem, len(parts))
	for i, p := range parts {
		items[i] = ListItem{ID: producerID.ListItemID(""), Value: Text(p)}
	}
	return &List{Items: items}
}

// TextContains implements `Text/contains`.
func TextContains(t, sub Text) Bool {
	return Bool(strings.Contains(string(t), string(sub)))
}
