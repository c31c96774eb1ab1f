package field

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/kuitang/pickerpw/internal/errs"
	"github.com/kuitang/pickerpw/internal/pattern"
	"github.com/playwright-community/playwright-go"
)

// DateKind configures Field for vaadin-date-picker. Reads use the widget's
// value property, which is empty or ISO-8601 whatever the display format;
// anything else reads as no value.
func DateKind() Kind[civil.Date] {
	return Kind[civil.Date]{
		Name:     "date",
		Host:     "vaadin-date-picker",
		Overlay:  "vaadin-date-picker-overlay",
		Source:   InternalValue,
		Lenient:  true,
		Fields:   pattern.DateFields,
		Allowed:  pattern.CalendarFields,
		Valid:    validDate,
		Encode:   civil.Date.String,
		Decode:   civil.ParseDate,
		ToTime:   func(d civil.Date) time.Time { return d.In(time.UTC) },
		FromTime: civil.DateOf,
	}
}

// ISO-8601 calendar dates have four-digit years.
func validDate(d civil.Date) bool {
	return d.IsValid() && d.Year >= 0 && d.Year <= 9999
}

// DateField is a page object for a date picker.
type DateField struct {
	*Field[civil.Date]
}

// NewDateField binds to the input of the date picker with the given id.
func NewDateField(page playwright.Page, id string, opts ...Option) *DateField {
	opts = append([]Option{WithName(id)}, opts...)
	return &DateField{New(DateKind(), page.Locator(inputSelector(id)), PageOverlays{Page: page}, opts...)}
}

// DateFieldFor binds to a locator resolved elsewhere, such as a date picker
// input inside a grid cell.
func DateFieldFor(input playwright.Locator, opts ...Option) (*DateField, error) {
	page, err := input.Page()
	if err != nil {
		return nil, errs.Wrap(errs.Unresolved, "date field: resolve page of locator", err)
	}
	return &DateField{New(DateKind(), input, PageOverlays{Page: page}, opts...)}, nil
}

// NewDateFieldWith binds to any Input and Overlays implementation.
func NewDateFieldWith(input Input, overlays Overlays, opts ...Option) *DateField {
	return &DateField{New(DateKind(), input, overlays, opts...)}
}
