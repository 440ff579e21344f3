// Package display formats game numbers for people.
package display

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders coin amounts, rates and timers for one locale.
type Formatter struct {
	p *message.Printer
}

// New returns a Formatter for tag.
func New(tag language.Tag) Formatter {
	return Formatter{p: message.NewPrinter(tag)}
}

// Default formats for English.
var Default = New(language.English)

// short-scale suffixes, smallest first.
var suffixes = []struct {
	threshold float64
	suffix    string
}{
	{1e3, "K"},
	{1e6, "M"},
	{1e9, "B"},
	{1e12, "T"},
	{1e15, "Qa"},
	{1e18, "Qi"},
}

// Coins formats a balance: whole numbers with grouped thousands below
// 100,000 and a short-scale suffix with two decimals above.
//
//	1234.7  -> "1,234"
//	2.5e6   -> "2.50M"
func (f Formatter) Coins(v float64) string {
	switch {
	case math.IsNaN(v):
		return "0"
	case math.IsInf(v, 1):
		return "∞"
	case v < 0:
		return "-" + f.Coins(-v)
	case v < 1e5:
		return f.p.Sprintf("%d", int64(math.Floor(v)))
	}

	i := len(suffixes) - 1
	for i > 0 && v < suffixes[i].threshold {
		i--
	}
	return f.p.Sprintf("%.2f%s", v/suffixes[i].threshold, suffixes[i].suffix)
}

// Rate formats a per-second rate, keeping one decimal for small rates.
func (f Formatter) Rate(v float64) string {
	if v > 0 && v < 100 && v != math.Floor(v) {
		return f.p.Sprintf("%.1f/s", v)
	}
	return f.Coins(v) + "/s"
}

// Gold formats the prestige currency.
func (f Formatter) Gold(v int64) string {
	return f.p.Sprintf("%d", v)
}

// Multiplier formats a multiplier such as the rebirth bonus.
func (f Formatter) Multiplier(v float64) string {
	return f.p.Sprintf("x%.2f", v)
}

// Duration formats a timer in whole seconds: "45s", "2m05s", "1h02m".
func Duration(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs <= 0 {
		return "0s"
	}
	h, m, s := secs/3600, secs/60%60, secs%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// Seconds is Duration for a float seconds count as stored on abilities.
func Seconds(v float64) string {
	return Duration(time.Duration(v * float64(time.Second)))
}

// Bar renders a fixed-width progress bar for frac in [0,1].
func Bar(frac float64, width int) string {
	if width <= 0 {
		return ""
	}
	frac = math.Max(0, math.Min(1, frac))
	full := int(math.Round(frac * float64(width)))
	return strings.Repeat("#", full) + strings.Repeat("-", width-full)
}
