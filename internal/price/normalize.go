package price

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// Places is the number of fractional digits kept on every normalized price.
const Places = 2

// mojibakeEuro is "€" encoded as UTF-8 and decoded as Windows-1252, which
// some catalogs serve verbatim.
const mojibakeEuro = "â‚¬"

// Normalize parses raw price text into a non-negative decimal.
//
// Currency glyphs and whitespace are dropped. A run of digits with no
// separator is read as integer-and-cents (the last two digits are the
// fraction), so a genuine "1234" with no cents reads as 12.34. Once any
// separator is present, every comma is treated as a decimal point; grouped
// values such as "1.234,00" therefore fail to parse and yield zero, as do
// signs and exponents.
func Normalize(raw string) decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero
	}

	cleaned := clean(raw)

	if !strings.ContainsAny(cleaned, ",.") {
		if len(cleaned) > Places {
			cut := len(cleaned) - Places
			cleaned = cleaned[:cut] + "." + cleaned[cut:]
		}
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	if !plainDecimal(cleaned) {
		return decimal.Zero
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil || value.IsNegative() {
		return decimal.Zero
	}
	return value.Round(Places)
}

// plainDecimal reports whether s is digits with at most one '.', so
// exponents and signs never reach the decimal parser.
func plainDecimal(s string) bool {
	dot := false
	digits := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

// clean folds compatibility forms (fullwidth digits, superscripts) and
// removes currency symbols and every whitespace variant, including U+00A0
// and U+202F.
func clean(raw string) string {
	s := strings.ReplaceAll(raw, mojibakeEuro, "")
	s = norm.NFKC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) || r == '\ufeff' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
