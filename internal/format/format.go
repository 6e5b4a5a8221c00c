// Package format renders prices and timestamps for display.
package format

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Price formats a major-unit amount with the currency symbol and two decimals.
// Example: Price(1299, "ILS", "en") => "₪1,299.00"
func Price(amount float64, currency, lang string) string {
	p := message.NewPrinter(tag(lang))
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + symbol(currency) + p.Sprintf("%.2f", amount)
}

func symbol(code string) string {
	switch strings.ToUpper(code) {
	case "", "ILS":
		return "₪"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	default:
		return strings.ToUpper(code) + " "
	}
}

// Date formats a timestamp in a locale-friendly short form. Zero yields "".
func Date(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "he":
		return t.Format("02/01/2006 15:04")
	default:
		return t.Format("Jan 2, 2006 15:04")
	}
}

func tag(lang string) language.Tag {
	t, err := language.Parse(lang)
	if err != nil {
		return language.English
	}
	return t
}
