package field

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/kuitang/pickerpw/internal/pattern"
	"github.com/playwright-community/playwright-go"
)

// fakeWidget emulates a picker: Fill opens the overlay, Enter parses the text
// (ISO first, then the widget's display pattern), stores the ISO value,
// re-renders the text in the display pattern and closes the overlay after
// closeDelay.
type fakeWidget struct {
	mu sync.Mutex

	kind    string // "date" or "time"
	host    string
	overlay string
	display string // widget display pattern, "" for ISO

	text        string
	value       string
	overlayOpen bool
	closesAt    time.Time
	closeDelay  time.Duration
	neverCloses bool

	fills    []string
	presses  []string
	evalArgs []interface{}

	fillErr  error
	pressErr error
	evalErr  error
	readErr  error
	waitErr  error
	evalRaw  interface{} // overrides value when set
}

func newFakeDateWidget() *fakeWidget {
	return &fakeWidget{kind: "date", host: "vaadin-date-picker", overlay: "vaadin-date-picker-overlay"}
}

func newFakeTimeWidget() *fakeWidget {
	return &fakeWidget{kind: "time", host: "vaadin-time-picker", overlay: "vaadin-time-picker-overlay"}
}

func (w *fakeWidget) Fill(value string, _ ...playwright.LocatorFillOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fillErr != nil {
		return w.fillErr
	}
	w.fills = append(w.fills, value)
	w.text = value
	w.overlayOpen = true
	w.closesAt = time.Time{}
	return nil
}

func (w *fakeWidget) Press(key string, _ ...playwright.LocatorPressOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pressErr != nil {
		return w.pressErr
	}
	w.presses = append(w.presses, key)
	if key != "Enter" {
		return nil
	}
	w.commitLocked()
	w.closesAt = time.Now().Add(w.closeDelay)
	return nil
}

func (w *fakeWidget) commitLocked() {
	switch w.kind {
	case "date":
		d, err := civil.ParseDate(w.text)
		if err != nil && w.display != "" {
			var t time.Time
			t, err = pattern.MustCompile(w.display).Parse(w.text)
			d = civil.DateOf(t)
		}
		if err != nil {
			w.value = ""
			return
		}
		w.value = d.String()
		if w.display != "" {
			w.text = pattern.MustCompile(w.display).Format(d.In(time.UTC))
		}
	case "time":
		var t civil.Time
		var err error
		if w.display != "" {
			var parsed time.Time
			parsed, err = pattern.MustCompile(w.display).Parse(w.text)
			t = civil.TimeOf(parsed)
		} else {
			t, err = parseLocalTime(w.text)
		}
		if err != nil {
			w.value = ""
			return
		}
		w.value = formatLocalTime(t)
		if w.display != "" {
			w.text = pattern.MustCompile(w.display).Format(TimeKind().ToTime(t))
		}
	}
}

func (w *fakeWidget) InputValue(_ ...playwright.LocatorInputValueOptions) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.readErr != nil {
		return "", w.readErr
	}
	return w.text, nil
}

func (w *fakeWidget) Evaluate(expression string, arg interface{}, _ ...playwright.LocatorEvaluateOptions) (interface{}, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.evalErr != nil {
		return nil, w.evalErr
	}
	if expression != hostValueScript {
		return nil, fmt.Errorf("unexpected script %q", expression)
	}
	w.evalArgs = append(w.evalArgs, arg)
	if w.evalRaw != nil {
		return w.evalRaw, nil
	}
	return w.value, nil
}

// WaitHidden polls the emulated overlay until it closes or timeout elapses.
func (w *fakeWidget) WaitHidden(tag string, timeout time.Duration) error {
	if tag != w.overlay {
		return fmt.Errorf("unexpected overlay %q", tag)
	}
	if w.waitErr != nil {
		return w.waitErr
	}
	if timeout <= 0 {
		timeout = time.Second
	}
	deadline := time.Now().Add(timeout)
	for {
		w.mu.Lock()
		open := w.overlayOpen && (w.neverCloses || w.closesAt.IsZero() || time.Now().Before(w.closesAt))
		if !open {
			w.overlayOpen = false
		}
		w.mu.Unlock()
		if !open {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %s still visible after %s", playwright.ErrTimeout, tag, timeout)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func (w *fakeWidget) setText(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.text = s
}

func (w *fakeWidget) setValue(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.value = s
}

func (w *fakeWidget) rawValue() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.value
}

func (w *fakeWidget) filled() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.fills...)
}

var errNoElement = errors.New("locator resolved to 0 elements")
