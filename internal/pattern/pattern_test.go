package pattern

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCompile_GoLayouts(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pattern string
		want    string
		fields  Fields
	}{
		{"yyyy-MM-dd", "2006-01-02", DateFields},
		{"dd.MM.yyyy", "02.01.2006", DateFields},
		{"d/M/yy", "2/1/06", DateFields},
		{"EEEE, d MMMM uuuu", "Monday, 2 January 2006", DateFields | Weekday},
		{"EEE d.MMM.yyyy", "Mon 2.Jan.2006", DateFields | Weekday},
		{"HH:mm", "15:04", TimeFields},
		{"H.mm.ss", "15.04.05", TimeFields | Second},
		{"HH:mm:ss.SSS", "15:04:05.000", TimeFields | Second | Fraction},
		{"HH:mm:ss,SSSSSS", "15:04:05,000000", TimeFields | Second | Fraction},
		{"h:mm a", "3:04 PM", TimeFields | Hour12 | Meridiem},
		{"hh 'h' mm", "03 h 04", TimeFields | Hour12},
		{"yyyy-MM-dd'T'HH:mm", "2006-01-02T15:04", DateFields | TimeFields},
		{"'week of' d MMM", "week of 2 Jan", Day | Month},
		{"HH 'o''clock'", "15 o'clock", Hour},
		{"''yy", "'06", Year},
	}
	for _, tc := range cases {
		t.Run(tc.pattern, func(t *testing.T) {
			t.Parallel()
			l, err := Compile(tc.pattern)
			require.NoError(t, err)
			require.Equal(t, tc.want, l.GoLayout())
			require.Equal(t, tc.fields, l.Fields(), "fields %s", l.Fields())
			require.Equal(t, tc.pattern, l.Pattern())
		})
	}
}

func TestCompile_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                "empty pattern",
		"   ":             "empty pattern",
		"yyyy-MM-dd Q":    "unsupported pattern letter 'Q'",
		"dd.MM.yyyy G":    "unsupported pattern letter 'G'",
		"ddd":             "unsupported width 3",
		"MMMMM":           "unsupported width 5",
		"HH:mm SSS":       "fraction must follow",
		"ss.SSSSSSSSSS":   "fraction longer than 9 digits",
		"'unterminated":   "unterminated quote",
		"yyyy 1 MM":       "digits are not allowed",
		"'Mon' dd":        `literal text "Mon"`,
		"yyyy_MM":         `literal text "_"`,
		"dd.MM.yyyy yyyy": "year appears twice",
		"aa":              "unsupported width 2",
		"Ms":              `"s" runs into the field before it`,
		"EEE'day'":        `literal text "day" runs into a field`,
	}
	for pattern, reason := range cases {
		t.Run(pattern, func(t *testing.T) {
			t.Parallel()
			_, err := Compile(pattern)
			require.Error(t, err)
			var perr *Error
			require.True(t, errors.As(err, &perr))
			require.Contains(t, err.Error(), reason)
		})
	}
}

func TestRequire(t *testing.T) {
	t.Parallel()

	require.NoError(t, MustCompile("dd.MM.yyyy").Require(DateFields))
	require.NoError(t, MustCompile("h:mm a").Require(TimeFields))
	require.NoError(t, MustCompile("HH:mm").Require(TimeFields))

	err := MustCompile("dd.MM").Require(DateFields)
	require.ErrorContains(t, err, "missing year")

	err = MustCompile("h:mm").Require(TimeFields)
	require.ErrorContains(t, err, "12-hour clock without AM/PM marker")

	err = MustCompile("mm:ss").Require(TimeFields)
	require.ErrorContains(t, err, "missing hour")
}

func TestAllow(t *testing.T) {
	t.Parallel()

	require.NoError(t, MustCompile("EEE, dd.MM.yyyy").Allow(CalendarFields))
	require.NoError(t, MustCompile("hh:mm:ss.SSS a").Allow(ClockFields))

	err := MustCompile("dd.MM.yyyy HH:mm").Allow(CalendarFields)
	require.ErrorContains(t, err, "cannot render hour, minute")

	err = MustCompile("yyyy-MM-dd HH:mm").Allow(ClockFields)
	require.ErrorContains(t, err, "cannot render year, month, day")
}

func TestLayout_Format(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, time.March, 15, 9, 5, 7, 120_000_000, time.UTC)
	cases := []struct {
		pattern string
		in      time.Time
		want    string
	}{
		{"H:mm", at, "9:05"},
		{"HH:mm", at, "09:05"},
		{"h:mm a", at.Add(4 * time.Hour), "1:05 PM"},
		{"dd.MM.yyyy", at, "15.03.2024"},
		{"d/M/yyyy", at, "15/3/2024"},
		{"uuuu-LL-dd", at, "2024-03-15"},
		{"EEE, d MMM yyyy", at, "Fri, 15 Mar 2024"},
		{"yyyy-MM-dd'T'HH:mm", at, "2024-03-15T09:05"},
		{"HH 'o''clock'", at, "09 o'clock"},
		{"HH:mm:ss.SSS", at, "09:05:07.120"},
		{"dd.MM.yyyy", time.Date(999, time.March, 15, 0, 0, 0, 0, time.UTC), "15.03.0999"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, MustCompile(tc.pattern).Format(tc.in), tc.pattern)
	}
}

func TestJodaLiteral(t *testing.T) {
	t.Parallel()

	require.Equal(t, ", ", jodaLiteral(", "))
	require.Equal(t, "'T'", jodaLiteral("T"))
	require.Equal(t, " 'o''''clock'", jodaLiteral(" o'clock"))
	require.Equal(t, "'week' 'of' ", jodaLiteral("week of "))
}

func TestMustCompile_Panics(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { MustCompile("Q") })
}

func TestParse_Mismatch(t *testing.T) {
	t.Parallel()

	l := MustCompile("dd.MM.yyyy")
	got, err := l.Parse(" 15.03.2024 ")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = l.Parse("2024-03-15")
	require.ErrorContains(t, err, `does not match pattern "dd.MM.yyyy"`)
}

var datePatterns = []string{
	"yyyy-MM-dd",
	"dd.MM.yyyy",
	"d/M/yyyy",
	"MM/dd/yyyy",
	"EEE, d MMM yyyy",
	"EEEE d MMMM yyyy",
}

var timePatterns = []string{
	"HH:mm",
	"H.mm",
	"HH:mm:ss",
	"h:mm a",
	"hh:mm:ss a",
	"HH:mm:ss.SSS",
	"HH:mm:ss.SSSSSSSSS",
}

func testLayout_DateRoundTrip(t *rapid.T) {
	p := rapid.SampledFrom(datePatterns).Draw(t, "pattern")
	want := time.Date(
		rapid.IntRange(1000, 9999).Draw(t, "year"),
		time.Month(rapid.IntRange(1, 12).Draw(t, "month")),
		rapid.IntRange(1, 28).Draw(t, "day"),
		0, 0, 0, 0, time.UTC,
	)

	l := MustCompile(p)
	got, err := l.Parse(l.Format(want))
	if err != nil {
		t.Fatalf("parse %q with %q: %v", l.Format(want), p, err)
	}
	if !got.Equal(want) {
		t.Fatalf("round trip via %q: got %s want %s", p, got, want)
	}
}

func TestLayout_DateRoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testLayout_DateRoundTrip)
}

func testLayout_TimeRoundTripKeepsCarriedFields(t *rapid.T) {
	p := rapid.SampledFrom(timePatterns).Draw(t, "pattern")
	l := MustCompile(p)

	in := time.Date(0, 1, 1,
		rapid.IntRange(0, 23).Draw(t, "hour"),
		rapid.IntRange(0, 59).Draw(t, "minute"),
		rapid.IntRange(0, 59).Draw(t, "second"),
		rapid.IntRange(0, 999_999_999).Draw(t, "nanos"),
		time.UTC,
	)
	got, err := l.Parse(l.Format(in))
	if err != nil {
		t.Fatalf("parse %q with %q: %v", l.Format(in), p, err)
	}

	if got.Hour() != in.Hour() || got.Minute() != in.Minute() {
		t.Fatalf("hour/minute lost via %q: got %s want %s", p, got, in)
	}
	if l.Fields()&Second != 0 && got.Second() != in.Second() {
		t.Fatalf("second lost via %q: got %s want %s", p, got, in)
	}
	if l.Fields()&Second == 0 && got.Second() != 0 {
		t.Fatalf("pattern %q has no seconds but parsed %d", p, got.Second())
	}
	if p == "HH:mm:ss.SSSSSSSSS" && got.Nanosecond() != in.Nanosecond() {
		t.Fatalf("nanoseconds lost via %q: got %d want %d", p, got.Nanosecond(), in.Nanosecond())
	}
}

func TestLayout_TimeRoundTripKeepsCarriedFields(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testLayout_TimeRoundTripKeepsCarriedFields)
}
