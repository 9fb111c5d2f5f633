package hydration

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Style selects how much of the date or time part is shown.
type Style int

const (
	StyleNone Style = iota
	StyleShort
	StyleMedium
	StyleLong
)

// FormatOptions configures a DateFormatter. With both styles unset the
// formatter uses a medium date and a short time.
type FormatOptions struct {
	DateStyle Style
	TimeStyle Style
	Location  *time.Location
}

type layoutSet struct {
	date [4]string
	time [4]string
	sep  string
}

var (
	layoutsUS = layoutSet{
		date: [4]string{"", "1/2/06", "Jan 2, 2006", "January 2, 2006"},
		time: [4]string{"", "3:04 PM", "3:04:05 PM", "3:04:05 PM MST"},
		sep:  ", ",
	}
	layoutsGB = layoutSet{
		date: [4]string{"", "02/01/2006", "2 Jan 2006", "2 January 2006"},
		time: [4]string{"", "15:04", "15:04:05", "15:04:05 MST"},
		sep:  ", ",
	}
	layoutsDotted = layoutSet{
		date: [4]string{"", "02.01.06", "02.01.2006", "02.01.2006"},
		time: [4]string{"", "15:04", "15:04:05", "15:04:05 MST"},
		sep:  ", ",
	}
	layoutsSlashed = layoutSet{
		date: [4]string{"", "02/01/06", "02/01/2006", "02/01/2006"},
		time: [4]string{"", "15:04", "15:04:05", "15:04:05 MST"},
		sep:  " ",
	}
	layoutsYearFirst = layoutSet{
		date: [4]string{"", "2006/01/02", "2006/01/02", "2006/01/02"},
		time: [4]string{"", "15:04", "15:04:05", "15:04:05 MST"},
		sep:  " ",
	}
	layoutsISO = layoutSet{
		date: [4]string{"", "2006-01-02", "2006-01-02", "2006-01-02"},
		time: [4]string{"", "15:04", "15:04:05", "15:04:05 MST"},
		sep:  " ",
	}
)

// supported is ordered so that the first entry is the matcher's fallback.
var supported = []struct {
	tag     language.Tag
	layouts layoutSet
}{
	{language.AmericanEnglish, layoutsUS},
	{language.BritishEnglish, layoutsGB},
	{language.German, layoutsDotted},
	{language.Russian, layoutsDotted},
	{language.Polish, layoutsDotted},
	{language.French, layoutsSlashed},
	{language.Spanish, layoutsSlashed},
	{language.Italian, layoutsSlashed},
	{language.Portuguese, layoutsSlashed},
	{language.Japanese, layoutsYearFirst},
	{language.Chinese, layoutsYearFirst},
	{language.Swedish, layoutsISO},
}

var matcher = func() language.Matcher {
	tags := make([]language.Tag, len(supported))
	for i, s := range supported {
		tags[i] = s.tag
	}
	return language.NewMatcher(tags)
}()

// DateFormatter renders timestamps only once its gate is ready.
type DateFormatter struct {
	gate   *Gate
	tag    language.Tag
	layout string
	loc    *time.Location
}

// NewDateFormatter parses locale as a BCP 47 tag and picks the closest
// supported convention.
func NewDateFormatter(gate *Gate, locale string, opts FormatOptions) (*DateFormatter, error) {
	if gate == nil {
		return nil, fmt.Errorf("hydration: nil gate")
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("hydration: invalid locale %q: %w", locale, err)
	}
	if opts.DateStyle < StyleNone || opts.DateStyle > StyleLong ||
		opts.TimeStyle < StyleNone || opts.TimeStyle > StyleLong {
		return nil, fmt.Errorf("hydration: style out of range")
	}
	if opts.DateStyle == StyleNone && opts.TimeStyle == StyleNone {
		opts.DateStyle, opts.TimeStyle = StyleMedium, StyleShort
	}

	_, idx, _ := matcher.Match(tag)
	set := supported[idx].layouts

	layout := set.date[opts.DateStyle]
	if t := set.time[opts.TimeStyle]; t != "" {
		if layout != "" {
			layout += set.sep
		}
		layout += t
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &DateFormatter{gate: gate, tag: tag, layout: layout, loc: loc}, nil
}

// Format returns "" while the gate is pending.
func (f *DateFormatter) Format(t time.Time) string {
	if !f.gate.Ready() {
		return ""
	}
	return t.In(f.loc).Format(f.layout)
}

// WithGate returns a copy bound to another gate, sharing the locale settings.
func (f *DateFormatter) WithGate(g *Gate) *DateFormatter {
	cp := *f
	cp.gate = g
	return &cp
}

// Locale is the tag the formatter was built with.
func (f *DateFormatter) Locale() language.Tag {
	return f.tag
}
