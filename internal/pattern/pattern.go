// Package pattern compiles CLDR-style date and time display patterns, such as
// "dd.MM.yyyy" or "h:mm a", into Go time layouts.
//
// Patterns are interpreted in the root locale: month and weekday names are
// English, and no locale-specific digits or separators are substituted.
//
// Supported letters:
//
//	y, u   year ("yy" two digits, anything else four)
//	M, L   month (M, MM, MMM, MMMM)
//	d      day of month (d, dd)
//	E      weekday (E..EEE short, EEEE long)
//	H      hour 0-23 (H, HH)
//	h      hour 1-12 (h, hh)
//	m      minute (m, mm)
//	s      second (s, ss)
//	S      fraction of second, 1-9 digits, must follow '.' or ','
//	a      AM/PM marker
//
// Text in single quotes is literal. Two single quotes in a row stand for one.
//
// Rendering goes through jodaTime; parsing uses the equivalent Go layout,
// which Compile checks renders exactly like its elements taken one by one.
package pattern

import (
	"fmt"
	"strings"
	"time"

	"github.com/vjeantet/jodaTime"
)

// Fields is a set of calendar and clock fields a layout carries.
type Fields uint16

const (
	Year Fields = 1 << iota
	Month
	Day
	Weekday
	Hour
	Hour12
	Minute
	Second
	Fraction
	Meridiem
)

// DateFields are the fields a pattern needs to identify a calendar date.
const DateFields = Year | Month | Day

// TimeFields are the fields a pattern needs to identify a time of day.
const TimeFields = Hour | Minute

// CalendarFields are the fields a calendar date can supply.
const CalendarFields = Year | Month | Day | Weekday

// ClockFields are the fields a time of day can supply.
const ClockFields = Hour | Hour12 | Minute | Second | Fraction | Meridiem

var fieldNames = []struct {
	f    Fields
	name string
}{
	{Year, "year"},
	{Month, "month"},
	{Day, "day"},
	{Weekday, "weekday"},
	{Hour, "hour"},
	{Hour12, "12-hour clock"},
	{Minute, "minute"},
	{Second, "second"},
	{Fraction, "fraction"},
	{Meridiem, "AM/PM marker"},
}

func (f Fields) String() string {
	var names []string
	for _, fn := range fieldNames {
		if f&fn.f != 0 {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

// Go layout fragments that would be misread as layout elements if they
// appeared in literal pattern text.
var reservedLiterals = []string{"Jan", "Mon", "MST", "PM", "pm", "Z07", "_"}

// Layout is a compiled pattern.
type Layout struct {
	pattern string
	layout  string // Go reference layout
	joda    string // pattern normalized for jodaTime
	fields  Fields
}

// Reference instants used to check that layout elements stay separate.
var probeTimes = []time.Time{
	time.Date(2009, time.November, 17, 20, 34, 58, 123456789, time.UTC),
	time.Date(1987, time.February, 3, 4, 5, 6, 7, time.UTC),
}

// Error reports a pattern that cannot be compiled.
type Error struct {
	Pattern string
	Offset  int
	Reason  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("pattern %q: %s at offset %d", e.Pattern, e.Reason, e.Offset)
}

// Compile translates a CLDR-style pattern into a Go layout.
func Compile(pattern string) (Layout, error) {
	if strings.TrimSpace(pattern) == "" {
		return Layout{}, &Error{Pattern: pattern, Reason: "empty pattern"}
	}

	var b, joda strings.Builder
	var literal strings.Builder
	var fields Fields
	rendered := make([]string, len(probeTimes))
	runes := []rune(pattern)
	literalStart := 0

	// fused reports whether the layout so far renders differently from its
	// elements rendered one at a time.
	fused := func() bool {
		for i, t := range probeTimes {
			if t.Format(b.String()) != rendered[i] {
				return true
			}
		}
		return false
	}

	flush := func() error {
		if literal.Len() == 0 {
			return nil
		}
		text := literal.String()
		literal.Reset()
		if reason := checkLiteral(text); reason != "" {
			return &Error{Pattern: pattern, Offset: literalStart, Reason: reason}
		}
		b.WriteString(text)
		joda.WriteString(jodaLiteral(text))
		for i := range rendered {
			rendered[i] += text
		}
		if fused() {
			return &Error{Pattern: pattern, Offset: literalStart, Reason: fmt.Sprintf("literal text %q runs into a field", text)}
		}
		return nil
	}

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case r == '\'':
			if literal.Len() == 0 {
				literalStart = i
			}
			if i+1 < len(runes) && runes[i+1] == '\'' {
				literal.WriteRune('\'')
				i += 2
				continue
			}
			end := i + 1
			for end < len(runes) && !(runes[end] == '\'' && (end+1 >= len(runes) || runes[end+1] != '\'')) {
				if runes[end] == '\'' {
					literal.WriteRune('\'')
					end += 2
					continue
				}
				literal.WriteRune(runes[end])
				end++
			}
			if end >= len(runes) {
				return Layout{}, &Error{Pattern: pattern, Offset: i, Reason: "unterminated quote"}
			}
			i = end + 1
		case isLetter(r):
			n := 1
			for i+n < len(runes) && runes[i+n] == r {
				n++
			}
			if err := flush(); err != nil {
				return Layout{}, err
			}
			elem, f, reason := element(r, n, b.String())
			if reason != "" {
				return Layout{}, &Error{Pattern: pattern, Offset: i, Reason: reason}
			}
			if fields&f != 0 && f != Hour12 {
				return Layout{}, &Error{Pattern: pattern, Offset: i, Reason: fmt.Sprintf("%s appears twice", f)}
			}
			fields |= f
			b.WriteString(elem)
			joda.WriteString(strings.Repeat(string(jodaLetter(r)), n))
			for k, t := range probeTimes {
				if f == Fraction {
					// The separator belongs to the fraction element.
					sep := rendered[k][len(rendered[k])-1:]
					rendered[k] = rendered[k][:len(rendered[k])-1] + t.Format(sep+elem)
					continue
				}
				rendered[k] += t.Format(elem)
			}
			if fused() {
				return Layout{}, &Error{Pattern: pattern, Offset: i, Reason: fmt.Sprintf("%q runs into the field before it", string(runes[i:i+n]))}
			}
			i += n
		default:
			if literal.Len() == 0 {
				literalStart = i
			}
			literal.WriteRune(r)
			i++
		}
	}
	if err := flush(); err != nil {
		return Layout{}, err
	}
	if fields&Hour12 != 0 {
		fields |= Hour
	}

	return Layout{pattern: pattern, layout: b.String(), joda: joda.String(), fields: fields}, nil
}

// MustCompile is Compile for patterns known at compile time.
func MustCompile(pattern string) Layout {
	l, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return l
}

// element maps a run of n pattern letters to a Go layout element.
// prev is the layout written so far, needed for fraction placement.
func element(letter rune, n int, prev string) (string, Fields, string) {
	switch letter {
	case 'y', 'u':
		if n == 2 {
			return "06", Year, ""
		}
		return "2006", Year, ""
	case 'M', 'L':
		switch n {
		case 1:
			return "1", Month, ""
		case 2:
			return "01", Month, ""
		case 3:
			return "Jan", Month, ""
		case 4:
			return "January", Month, ""
		}
	case 'd':
		switch n {
		case 1:
			return "2", Day, ""
		case 2:
			return "02", Day, ""
		}
	case 'E':
		switch {
		case n <= 3:
			return "Mon", Weekday, ""
		case n == 4:
			return "Monday", Weekday, ""
		}
	case 'H':
		if n <= 2 {
			return "15", Hour, ""
		}
	case 'h':
		switch n {
		case 1:
			return "3", Hour12, ""
		case 2:
			return "03", Hour12, ""
		}
	case 'm':
		switch n {
		case 1:
			return "4", Minute, ""
		case 2:
			return "04", Minute, ""
		}
	case 's':
		switch n {
		case 1:
			return "5", Second, ""
		case 2:
			return "05", Second, ""
		}
	case 'S':
		if n > 9 {
			return "", 0, "fraction longer than 9 digits"
		}
		if !strings.HasSuffix(prev, ".") && !strings.HasSuffix(prev, ",") {
			return "", 0, "fraction must follow '.' or ','"
		}
		return strings.Repeat("0", n), Fraction, ""
	case 'a':
		if n == 1 {
			return "PM", Meridiem, ""
		}
	default:
		return "", 0, fmt.Sprintf("unsupported pattern letter %q", letter)
	}
	return "", 0, fmt.Sprintf("unsupported width %d for letter %q", n, letter)
}

func checkLiteral(text string) string {
	for _, r := range text {
		if r >= '0' && r <= '9' {
			return "digits are not allowed in literal text"
		}
	}
	for _, reserved := range reservedLiterals {
		if strings.Contains(text, reserved) {
			return fmt.Sprintf("literal text %q is not supported", reserved)
		}
	}
	return ""
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// jodaLetter maps standalone and ISO-year letters to the ones jodaTime knows.
func jodaLetter(r rune) rune {
	switch r {
	case 'u':
		return 'y'
	case 'L':
		return 'M'
	}
	return r
}

// jodaLiteral quotes the letters of literal text and doubles apostrophes.
func jodaLiteral(text string) string {
	var b strings.Builder
	var quoted []rune
	closeQuote := func() {
		if len(quoted) == 0 {
			return
		}
		b.WriteByte('\'')
		b.WriteString(string(quoted))
		b.WriteByte('\'')
		quoted = quoted[:0]
	}
	for _, r := range text {
		switch {
		case r == '\'':
			closeQuote()
			b.WriteString("''")
		case isLetter(r):
			quoted = append(quoted, r)
		default:
			closeQuote()
			b.WriteRune(r)
		}
	}
	closeQuote()
	return b.String()
}

// Pattern returns the source pattern.
func (l Layout) Pattern() string {
	return l.pattern
}

// GoLayout returns the equivalent Go reference layout.
func (l Layout) GoLayout() string {
	return l.layout
}

// Fields returns the fields present in the layout.
func (l Layout) Fields() Fields {
	return l.fields
}

// Allow reports an error when the layout carries fields outside allowed,
// such as an hour in a pattern used for calendar dates.
func (l Layout) Allow(allowed Fields) error {
	if extra := l.fields &^ allowed; extra != 0 {
		return &Error{Pattern: l.pattern, Reason: "cannot render " + extra.String()}
	}
	return nil
}

// Require reports an error when the layout lacks any of want, or when a
// 12-hour clock has no AM/PM marker.
func (l Layout) Require(want Fields) error {
	if missing := want &^ l.fields; missing != 0 {
		return &Error{Pattern: l.pattern, Reason: "missing " + missing.String()}
	}
	if want&Hour != 0 && l.fields&Hour12 != 0 && l.fields&Meridiem == 0 {
		return &Error{Pattern: l.pattern, Reason: "12-hour clock without AM/PM marker"}
	}
	return nil
}

// Format renders t with the pattern. jodaTime writes years with no padding
// and fractions without a fixed width, so those cases use the Go layout.
func (l Layout) Format(t time.Time) string {
	if l.fields&Fraction != 0 || (l.fields&Year != 0 && (t.Year() < 1000 || t.Year() > 9999)) {
		return t.Format(l.layout)
	}
	return jodaTime.Format(l.joda, t)
}

// Parse reads s with the layout. Fields missing from the layout are zero.
func (l Layout) Parse(s string) (time.Time, error) {
	t, err := time.Parse(l.layout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("text %q does not match pattern %q: %w", s, l.pattern, err)
	}
	return t, nil
}
