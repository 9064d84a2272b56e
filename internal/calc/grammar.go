package calc

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Grammar is the dialect formula text is written in.
type Grammar int

const (
	// GrammarEnglish is the locale-independent English dialect: ',' argument
	// separator, '.' decimal separator, English function names.
	GrammarEnglish Grammar = iota

	// GrammarNative follows the process locale. Under a decimal-comma
	// locale, ';' separates arguments and ',' is the decimal mark.
	GrammarNative
)

func (g Grammar) String() string {
	switch g {
	case GrammarEnglish:
		return "english"
	case GrammarNative:
		return "native"
	default:
		return fmt.Sprintf("grammar(%d)", int(g))
	}
}

// decimalCommaBases lists languages whose default numeric format uses a
// decimal comma.
var decimalCommaBases = map[string]bool{
	"cs": true, "da": true, "de": true, "es": true, "fi": true,
	"fr": true, "hu": true, "it": true, "nb": true, "nl": true,
	"pl": true, "pt": true, "ru": true, "sv": true, "tr": true,
	"uk": true,
}

// AmbientLocale resolves the numeric locale from LC_ALL, LC_NUMERIC and
// LANG in POSIX precedence order. "C", "POSIX" and unparseable values
// resolve to English.
func AmbientLocale(getenv func(string) string) language.Tag {
	for _, name := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		v := getenv(name)
		if v == "" {
			continue
		}
		return parsePOSIXLocale(v)
	}
	return language.English
}

func parsePOSIXLocale(v string) language.Tag {
	if v == "C" || v == "POSIX" || strings.HasPrefix(v, "C.") {
		return language.English
	}
	if i := strings.IndexAny(v, ".@"); i >= 0 {
		v = v[:i]
	}
	tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
	if err != nil {
		return language.English
	}
	return tag
}

// UsesDecimalComma reports whether tag formats numbers with a decimal comma.
func UsesDecimalComma(tag language.Tag) bool {
	base, _ := tag.Base()
	return decimalCommaBases[base.String()]
}

// toEnglish rewrites formula text from g into the English dialect.
func toEnglish(formula string, g Grammar, locale language.Tag) (string, error) {
	switch g {
	case GrammarEnglish:
		return formula, nil
	case GrammarNative:
		if !UsesDecimalComma(locale) {
			return formula, nil
		}
		return swapSeparators(formula), nil
	default:
		return "", fmt.Errorf("unsupported grammar %s", g)
	}
}

// swapSeparators maps ';' to ',' and ',' to '.' outside string literals.
func swapSeparators(formula string) string {
	var b strings.Builder
	b.Grow(len(formula))
	inString := false
	for _, r := range formula {
		switch {
		case r == '"':
			inString = !inString
		case inString:
		case r == ';':
			r = ','
		case r == ',':
			r = '.'
		}
		b.WriteRune(r)
	}
	return b.String()
}
