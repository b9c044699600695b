// Package currency implements currency detection and monetary string parsing
// for the supported currency set.
package currency

import (
	"fmt"
	"math"
	"strings"
)

// Code identifies a supported currency.
type Code string

// Supported currency codes.
const (
	EUR Code = "EUR"
	USD Code = "USD"
	GBP Code = "GBP"
	CHF Code = "CHF"
	JPY Code = "JPY"
	INR Code = "INR"
	KRW Code = "KRW"
	SEK Code = "SEK"
)

// Format describes one currency's textual conventions. DecimalSep is empty
// for currencies that carry no decimal part.
type Format struct {
	Symbol       string
	ThousandsSep string
	DecimalSep   string
	SymbolAfter  bool
}

// detectionOrder fixes the order symbols are tried in, so detection is
// deterministic. CHF's "Fr" marker must come before SEK's "kr".
var detectionOrder = []Code{EUR, USD, GBP, INR, KRW, CHF, JPY, SEK}

var formats = map[Code]Format{
	EUR: {Symbol: "€", ThousandsSep: ".", DecimalSep: ",", SymbolAfter: true},
	USD: {Symbol: "$", ThousandsSep: ",", DecimalSep: "."},
	GBP: {Symbol: "£", ThousandsSep: ",", DecimalSep: "."},
	CHF: {Symbol: "Fr", ThousandsSep: ".", DecimalSep: ",", SymbolAfter: true},
	JPY: {Symbol: "¥", ThousandsSep: ",", DecimalSep: ""},
	INR: {Symbol: "₹", ThousandsSep: ",", DecimalSep: "."},
	KRW: {Symbol: "₩", ThousandsSep: ",", DecimalSep: ""},
	SEK: {Symbol: "kr", ThousandsSep: " ", DecimalSep: ",", SymbolAfter: true},
}

// defaultFormat is the convention assumed when no currency can be resolved
// and the string is ambiguous: dot decimal, comma thousands.
var defaultFormat = Format{ThousandsSep: ",", DecimalSep: "."}

// FormatFor returns the format rules for a currency code.
func FormatFor(code Code) (Format, bool) {
	f, ok := formats[code]
	return f, ok
}

// Supported returns all supported currency codes in detection order.
func Supported() []Code {
	out := make([]Code, len(detectionOrder))
	copy(out, detectionOrder)
	return out
}

// Render formats an amount using the currency's textual conventions. An
// unknown or empty code renders with the default dot-decimal convention
// and no symbol.
func Render(amount float64, code Code) string {
	f, ok := formats[code]
	if !ok {
		f = defaultFormat
	}

	neg := amount < 0
	abs := math.Abs(amount)

	decimals := 2
	if f.DecimalSep == "" {
		decimals = 0
	}

	fixed := fmt.Sprintf("%.*f", decimals, abs)
	intPart := fixed
	fracPart := ""
	if decimals > 0 {
		intPart = fixed[:len(fixed)-decimals-1]
		fracPart = fixed[len(fixed)-decimals:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.ThousandsSep)
		}
		b.WriteRune(r)
	}
	number := b.String()
	if fracPart != "" {
		number += f.DecimalSep + fracPart
	}

	if neg {
		number = "-" + number
	}
	switch {
	case f.Symbol == "":
		return number
	case f.SymbolAfter:
		return number + " " + f.Symbol
	default:
		return f.Symbol + number
	}
}

// Detect inspects a string for a known currency symbol or code marker.
// Returns false when no marker is recognized.
func Detect(raw string) (Code, bool) {
	for _, code := range detectionOrder {
		if strings.Contains(raw, formats[code].Symbol) {
			return code, true
		}
	}
	for _, code := range detectionOrder {
		if strings.Contains(raw, string(code)) {
			return code, true
		}
	}
	return "", false
}
