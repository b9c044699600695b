package currency

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/kanso/internal/common"
)

// Result is the outcome of parsing one monetary cell. Defaulted is set when
// the input could not be parsed and the zero default was substituted, so
// callers can surface data-quality problems without log scraping.
type Result struct {
	Currency  Code
	Amount    float64
	Defaulted bool
}

// markerPattern strips currency symbols and code markers before numeric
// parsing. "Fr" must precede "kr" so the CHF marker is not half-consumed.
var markerPattern = regexp.MustCompile(`[€$£¥₹₩]|Fr|CHF|JPY|USD|EUR|GBP|INR|KRW|SEK|kr`)

// alphaPattern matches strings of letters, underscores, and spaces: header
// labels that leaked into a monetary column rather than broken numbers.
var alphaPattern = regexp.MustCompile(`^[A-Za-z_ ]+$`)

// Parse converts a raw monetary cell into a float value. The cell may be a
// string with or without currency decoration, an already-numeric value, or
// nil. A forced currency wins over any symbol found in the string. Malformed
// input never produces an error: the result carries 0.0 with Defaulted set.
func Parse(raw any, forced Code) Result {
	switch v := raw.(type) {
	case nil:
		return Result{Currency: forced}
	case float64:
		return Result{Currency: forced, Amount: v}
	case float32:
		return Result{Currency: forced, Amount: float64(v)}
	case int:
		return Result{Currency: forced, Amount: float64(v)}
	case int64:
		return Result{Currency: forced, Amount: float64(v)}
	case string:
		return parseString(v, forced)
	default:
		common.LogDebug("unsupported monetary cell type, defaulting to zero",
			common.Fields{"value": raw})
		return Result{Currency: forced, Defaulted: true}
	}
}

// ParseValue is a convenience wrapper returning only the amount.
func ParseValue(raw any, forced Code) float64 {
	return Parse(raw, forced).Amount
}

func parseString(raw string, forced Code) Result {
	code := forced
	detected := forced != ""
	if !detected {
		code, detected = Detect(raw)
	}

	cleaned := markerPattern.ReplaceAllString(raw, "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")

	// Empty cells and a lone dash are how sheets render zero in monetary
	// number formats.
	if cleaned == "" || cleaned == "-" {
		return Result{Currency: code}
	}

	if !detected {
		if v, ok := parsePlain(cleaned); ok {
			return Result{Amount: v}
		}
		// Ambiguous: both separators present. Assume the default
		// dot-decimal, comma-thousands convention.
		return finish(raw, cleaned, "", defaultFormat)
	}

	fmtRules, ok := FormatFor(code)
	if !ok {
		fmtRules = defaultFormat
	}
	return finish(raw, cleaned, code, fmtRules)
}

// parsePlain handles symbol-less values with at most one separator: a single
// dot or a single comma is taken as the decimal separator.
func parsePlain(cleaned string) (float64, bool) {
	dots := strings.Count(cleaned, ".")
	commas := strings.Count(cleaned, ",")

	var candidate string
	switch {
	case dots == 1 && commas == 0:
		candidate = cleaned
	case commas == 1 && dots == 0:
		candidate = strings.Replace(cleaned, ",", ".", 1)
	case dots == 0 && commas == 0:
		candidate = cleaned
	default:
		return 0, false
	}

	d, err := decimal.NewFromString(candidate)
	if err != nil {
		return 0, false
	}
	f, _ := d.Float64()
	return f, true
}

func finish(raw, cleaned string, code Code, rules Format) Result {
	candidate := cleaned
	if rules.ThousandsSep != "" {
		candidate = strings.ReplaceAll(candidate, rules.ThousandsSep, "")
	}
	if rules.DecimalSep != "" && rules.DecimalSep != "." {
		candidate = strings.ReplaceAll(candidate, rules.DecimalSep, ".")
	}

	d, err := decimal.NewFromString(candidate)
	if err != nil {
		if alphaPattern.MatchString(cleaned) {
			// A text label in a monetary column, common when iterating all
			// columns of a sheet with a duplicated header row.
			common.LogDebug("skipping text value during monetary parsing",
				common.Fields{"value": raw})
		} else {
			common.LogError(err, "failed to parse monetary value",
				common.Fields{"value": raw, "cleaned": candidate})
		}
		return Result{Currency: code, Defaulted: true}
	}

	f, _ := d.Float64()
	return Result{Currency: code, Amount: f}
}
