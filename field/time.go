package field

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/kuitang/pickerpw/internal/errs"
	"github.com/kuitang/pickerpw/internal/pattern"
	"github.com/playwright-community/playwright-go"
)

// TimeKind configures Field for vaadin-time-picker. Reads parse the displayed
// text, with the display pattern when one is set, and fail on text that does
// not parse.
func TimeKind() Kind[civil.Time] {
	return Kind[civil.Time]{
		Name:    "time",
		Host:    "vaadin-time-picker",
		Overlay: "vaadin-time-picker-overlay",
		Source:  DisplayedText,
		Fields:  pattern.TimeFields,
		Allowed: pattern.ClockFields,
		Valid:   civil.Time.IsValid,
		Encode:  formatLocalTime,
		Decode:  parseLocalTime,
		ToTime: func(t civil.Time) time.Time {
			return time.Date(0, time.January, 1, t.Hour, t.Minute, t.Second, t.Nanosecond, time.UTC)
		},
		FromTime: civil.TimeOf,
	}
}

// formatLocalTime writes the shortest ISO-8601 local time: seconds only when
// set, fraction in groups of three digits.
func formatLocalTime(t civil.Time) string {
	s := fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
	if t.Second == 0 && t.Nanosecond == 0 {
		return s
	}
	s += fmt.Sprintf(":%02d", t.Second)
	switch {
	case t.Nanosecond == 0:
		return s
	case t.Nanosecond%1_000_000 == 0:
		return s + fmt.Sprintf(".%03d", t.Nanosecond/1_000_000)
	case t.Nanosecond%1_000 == 0:
		return s + fmt.Sprintf(".%06d", t.Nanosecond/1_000)
	}
	return s + fmt.Sprintf(".%09d", t.Nanosecond)
}

var localTimeRE = regexp.MustCompile(`^(\d{2}):(\d{2})(?::(\d{2})(?:\.(\d{1,9}))?)?$`)

// parseLocalTime reads HH:mm[:ss[.fffffffff]].
func parseLocalTime(s string) (civil.Time, error) {
	m := localTimeRE.FindStringSubmatch(s)
	if m == nil {
		return civil.Time{}, fmt.Errorf("text %q is not an ISO-8601 local time", s)
	}
	var t civil.Time
	t.Hour, _ = strconv.Atoi(m[1])
	t.Minute, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		t.Second, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		t.Nanosecond, _ = strconv.Atoi(m[4] + strings.Repeat("0", 9-len(m[4])))
	}
	if !t.IsValid() {
		return civil.Time{}, fmt.Errorf("text %q is out of range for a time of day", s)
	}
	return t, nil
}

// TimeField is a page object for a time picker.
type TimeField struct {
	*Field[civil.Time]
}

// NewTimeField binds to the input of the time picker with the given id.
func NewTimeField(page playwright.Page, id string, opts ...Option) *TimeField {
	opts = append([]Option{WithName(id)}, opts...)
	return &TimeField{New(TimeKind(), page.Locator(inputSelector(id)), PageOverlays{Page: page}, opts...)}
}

// TimeFieldFor binds to a locator resolved elsewhere, such as a time picker
// input inside a grid cell.
func TimeFieldFor(input playwright.Locator, opts ...Option) (*TimeField, error) {
	page, err := input.Page()
	if err != nil {
		return nil, errs.Wrap(errs.Unresolved, "time field: resolve page of locator", err)
	}
	return &TimeField{New(TimeKind(), input, PageOverlays{Page: page}, opts...)}, nil
}

// NewTimeFieldWith binds to any Input and Overlays implementation.
func NewTimeFieldWith(input Input, overlays Overlays, opts ...Option) *TimeField {
	return &TimeField{New(TimeKind(), input, overlays, opts...)}
}

// Read parses the displayed time. Unlike DateField, text that does not parse
// is an error (code unparsable), not an absent value.
func (t *TimeField) Read(ctx context.Context) (civil.Time, error) {
	v, _, err := t.Field.Read(ctx)
	return v, err
}
