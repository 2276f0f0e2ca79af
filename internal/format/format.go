// Package format renders amounts and timestamps for display.
//
// All functions are pure. Amounts are always shown with two fraction
// digits and grouped thousands, in the currency symbol of the locale.
package format

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
)

// DefaultLocale is used when no tag is given or nothing matches.
const DefaultLocale = "zh-CN"

type locale struct {
	tag      language.Tag
	symbol   string
	suffix   bool // symbol after the number
	group    string
	decimal  string
	dateTime func(time.Time) string
}

var (
	italianMonths = [...]string{"gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
		"luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"}

	locales = []locale{
		{
			tag:     language.MustParse("zh-CN"),
			symbol:  "¥",
			group:   ",",
			decimal: ".",
			dateTime: func(t time.Time) string {
				return t.Format("1月2日 15:04")
			},
		},
		{
			tag:     language.MustParse("en-US"),
			symbol:  "CN¥",
			group:   ",",
			decimal: ".",
			dateTime: func(t time.Time) string {
				return t.Format("January 2 at 03:04 PM")
			},
		},
		{
			tag:     language.MustParse("it-IT"),
			symbol:  "CN¥",
			suffix:  true,
			group:   ".",
			decimal: ",",
			dateTime: func(t time.Time) string {
				return t.Format("2 ") + italianMonths[t.Month()-1] + t.Format(" alle ore 15:04")
			},
		},
	}

	matcher = language.NewMatcher(supportedTags())
)

func supportedTags() []language.Tag {
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = l.tag
	}
	return tags
}

// Formatter renders values for one locale.
type Formatter struct {
	loc locale
	tz  *time.Location
}

// New returns a Formatter for the closest supported match of the BCP 47
// tag. Unknown or malformed tags fall back to DefaultLocale.
func New(tag string) *Formatter {
	f := &Formatter{loc: locales[0], tz: time.Local}
	if strings.TrimSpace(tag) == "" {
		return f
	}
	t, err := language.Parse(tag)
	if err != nil {
		return f
	}
	_, idx, conf := matcher.Match(t)
	if conf != language.No {
		f.loc = locales[idx]
	}
	return f
}

// In returns a copy of f that renders timestamps in loc.
func (f *Formatter) In(loc *time.Location) *Formatter {
	c := *f
	if loc != nil {
		c.tz = loc
	}
	return &c
}

// Locale returns the BCP 47 tag actually in use.
func (f *Formatter) Locale() string {
	return f.loc.tag.String()
}

// Currency renders m like "¥1,234.56" (zh-CN) with a leading minus for negatives.
func (f *Formatter) Currency(m core.Money) string {
	return f.withSymbol(m.Cents < 0, f.number(m.Abs().Cents))
}

// Signed renders m with an explicit sign for the given type, as in
// transaction lists: "+¥12.00" for income and "-¥12.00" for expense.
func (f *Formatter) Signed(t core.TransactionType, m core.Money) string {
	sign := "+"
	if t == core.Expense {
		sign = "-"
	}
	return sign + f.withSymbol(false, f.number(m.Abs().Cents))
}

// AxisTick renders a chart axis value in thousands with two decimals,
// "¥1.50k". Zero is "¥0.00".
func (f *Formatter) AxisTick(m core.Money) string {
	if m.Cents == 0 {
		return f.withSymbol(false, "0"+f.loc.decimal+"00")
	}
	s := m.Decimal().Shift(-3).StringFixed(2)
	if f.loc.decimal != "." {
		s = strings.Replace(s, ".", f.loc.decimal, 1)
	}
	neg := strings.HasPrefix(s, "-")
	return f.withSymbol(neg, strings.TrimPrefix(s, "-")+"k")
}

// DateTime renders month, day, hour and minute in the locale's long form,
// "1月15日 14:30" for zh-CN.
func (f *Formatter) DateTime(t time.Time) string {
	return f.loc.dateTime(t.In(f.tz))
}

func (f *Formatter) number(cents int64) string {
	units := humanize.Comma(cents / 100)
	if f.loc.group != "," {
		units = strings.ReplaceAll(units, ",", f.loc.group)
	}
	frac := cents % 100
	return units + f.loc.decimal + string([]byte{byte('0' + frac/10), byte('0' + frac%10)})
}

func (f *Formatter) withSymbol(neg bool, num string) string {
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if f.loc.suffix {
		b.WriteString(num)
		b.WriteString(" ")
		b.WriteString(f.loc.symbol)
		return b.String()
	}
	b.WriteString(f.loc.symbol)
	b.WriteString(num)
	return b.String()
}

var defaultFormatter = New(DefaultLocale)

// Currency formats with the default locale.
func Currency(m core.Money) string { return defaultFormatter.Currency(m) }

// DateTime formats with the default locale in local time.
func DateTime(t time.Time) string { return defaultFormatter.DateTime(t) }

// AxisTick formats with the default locale.
func AxisTick(m core.Money) string { return defaultFormatter.AxisTick(m) }

// Signed formats with the default locale.
func Signed(t core.TransactionType, m core.Money) string { return defaultFormatter.Signed(t, m) }
