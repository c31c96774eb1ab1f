// Package field provides page objects for rich date and time picker widgets
// driven through Playwright.
//
// A field writes a structured value by filling the widget's input, pressing
// Enter and blocking until the widget's overlay is hidden, so any client-side
// parsing the commit triggers has finished when Write returns. Reads always
// query the live page.
//
// DateField and TimeField are two configurations (Kind) of the generic Field.
// They differ in where a read comes from: the date widget's value property is
// always ISO-8601 regardless of display format, while the time field parses
// the displayed text.
package field

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kuitang/pickerpw/internal/errs"
	"github.com/kuitang/pickerpw/internal/logutil"
	"github.com/kuitang/pickerpw/internal/obs"
	"github.com/kuitang/pickerpw/internal/pattern"
	"github.com/playwright-community/playwright-go"
)

// Source selects where a read takes the widget's text from.
type Source int

const (
	// InternalValue reads the host widget's value property.
	InternalValue Source = iota
	// DisplayedText reads the text shown in the input.
	DisplayedText
)

func (s Source) String() string {
	switch s {
	case InternalValue:
		return "internal_value"
	case DisplayedText:
		return "displayed_text"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Phase is a step of a write.
type Phase int

const (
	Idle Phase = iota
	Filling
	Committing
	AwaitingOverlayClose
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Filling:
		return "filling"
	case Committing:
		return "committing"
	case AwaitingOverlayClose:
		return "awaiting_overlay_close"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Kind describes one widget type.
type Kind[T any] struct {
	Name    string // used in errors and logs
	Host    string // tag of the widget element owning the value property
	Overlay string // tag of the overlay shown while editing
	Source  Source
	// Lenient kinds report undecodable text as "no value" instead of failing.
	Lenient bool
	// Fields a display pattern must carry to identify a value.
	Fields pattern.Fields
	// Allowed are the fields a value can supply to a display pattern.
	Allowed pattern.Fields

	Valid    func(T) bool
	Encode   func(T) string
	Decode   func(string) (T, error)
	ToTime   func(T) time.Time
	FromTime func(time.Time) T
}

// Field is a page object bound to one widget instance.
type Field[T any] struct {
	kind     Kind[T]
	input    Input
	overlays Overlays
	format   string
	timeout  time.Duration
	name     string
	logger   *slog.Logger
}

// New binds a field of the given kind to input and overlays.
func New[T any](kind Kind[T], input Input, overlays Overlays, opts ...Option) *Field[T] {
	s := settings{name: "unnamed"}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = obs.Pkg("field")
	}
	return &Field[T]{
		kind:     kind,
		input:    input,
		overlays: overlays,
		format:   s.format,
		timeout:  s.timeout,
		name:     s.name,
		logger:   s.logger.With("widget", kind.Name),
	}
}

// Name returns the label used in errors and logs.
func (f *Field[T]) Name() string {
	return f.name
}

// Format returns the display pattern, or "" for the default encoding.
func (f *Field[T]) Format() string {
	return f.format
}

// SetFormat changes the display pattern for later writes and reads. Values
// already written are not touched. The pattern is checked on use.
func (f *Field[T]) SetFormat(p string) {
	f.format = p
}

// Write commits value to the widget and blocks until its overlay is hidden.
func (f *Field[T]) Write(ctx context.Context, value T) error {
	ctx = f.context(ctx)
	log := obs.Enrich(ctx, f.logger)
	start := time.Now()

	c, err := f.Begin(ctx, value)
	if err == nil {
		err = c.Wait(ctx)
	}
	if err != nil {
		log.Warn("field_write_failed", "code", errs.CodeOf(err), "reason", errs.MessageOf(err), "error", err)
		return err
	}
	log.Debug("field_written", "dur_ms", float64(time.Since(start).Microseconds())/1000.0)
	return nil
}

// Begin fills and commits value, then returns the pending overlay wait.
// Errors from filling or committing are returned directly.
func (f *Field[T]) Begin(ctx context.Context, value T) (*Commit, error) {
	ctx = f.context(ctx)
	log := obs.Enrich(ctx, f.logger)

	if err := ctx.Err(); err != nil {
		return nil, errs.FromContext(f.msg(Idle, "context done before write"), err)
	}
	if f.kind.Valid != nil && !f.kind.Valid(value) {
		return nil, errs.New(errs.InvalidArgument, f.msg(Idle, fmt.Sprintf("invalid %s value %v", f.kind.Name, value)))
	}
	text, err := f.encode(value)
	if err != nil {
		return nil, err
	}

	log.Debug("field_phase", "phase", Filling.String(), "text", logutil.Text(text))
	if err := f.input.Fill(text); err != nil {
		return nil, errs.Wrap(errs.Unresolved, f.msg(Filling, "fill input"), err)
	}

	log.Debug("field_phase", "phase", Committing.String())
	if err := f.input.Press("Enter"); err != nil {
		return nil, errs.Wrap(errs.Unresolved, f.msg(Committing, "press Enter"), err)
	}

	timeout := f.waitTimeout(ctx)
	log.Debug("field_phase",
		"phase", AwaitingOverlayClose.String(),
		"overlay", f.kind.Overlay,
		"timeout_ms", timeout.Milliseconds(),
	)
	c := newCommit(f.msg(AwaitingOverlayClose, "overlay "+f.kind.Overlay))
	go func() {
		c.finish(f.overlayErr(f.overlays.WaitHidden(f.kind.Overlay, timeout)))
	}()
	return c, nil
}

// Read returns the widget's current value. ok is false when a lenient kind
// holds no decodable value; strict kinds return an unparsable error instead.
func (f *Field[T]) Read(ctx context.Context) (value T, ok bool, err error) {
	ctx = f.context(ctx)
	log := obs.Enrich(ctx, f.logger)

	var raw string
	switch f.kind.Source {
	case InternalValue:
		raw, err = f.RawValue(ctx)
	default:
		raw, err = f.ReadDisplayedText(ctx)
	}
	if err != nil {
		return value, false, err
	}

	decoded, derr := f.decode(raw)
	if derr == nil {
		return decoded, true, nil
	}
	if errs.Is(derr, errs.InvalidFormat) {
		return value, false, derr
	}
	if f.kind.Lenient {
		log.Debug("field_read_absent", "raw", logutil.Text(raw), "reason", derr.Error())
		return value, false, nil
	}
	err = errs.Wrap(errs.Unparsable, f.msg(Idle, fmt.Sprintf("read %s from %s", f.kind.Name, logutil.Text(raw))), derr)
	log.Warn("field_read_failed", "code", errs.CodeOf(err), "error", err)
	return value, false, err
}

// ReadDisplayedText returns the text currently shown in the input. It may
// depend on the widget's locale and display format.
func (f *Field[T]) ReadDisplayedText(ctx context.Context) (string, error) {
	if err := f.context(ctx).Err(); err != nil {
		return "", errs.FromContext(f.msg(Idle, "context done before read"), err)
	}
	text, err := f.input.InputValue()
	if err != nil {
		return "", errs.Wrap(errs.Unresolved, f.msg(Idle, "read input text"), err)
	}
	return text, nil
}

// RawValue returns the host widget's value property, bypassing display
// formatting. Unset values read as "".
func (f *Field[T]) RawValue(ctx context.Context) (string, error) {
	if err := f.context(ctx).Err(); err != nil {
		return "", errs.FromContext(f.msg(Idle, "context done before read"), err)
	}
	v, err := f.input.Evaluate(hostValueScript, f.kind.Host)
	if err != nil {
		return "", errs.Wrap(errs.Unresolved, f.msg(Idle, "evaluate "+f.kind.Host+" value"), err)
	}
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return fmt.Sprint(s), nil
	}
}

func (f *Field[T]) encode(value T) (string, error) {
	if f.format == "" {
		return f.kind.Encode(value), nil
	}
	layout, err := f.layout()
	if err != nil {
		return "", err
	}
	return layout.Format(f.kind.ToTime(value)), nil
}

func (f *Field[T]) decode(raw string) (T, error) {
	if f.kind.Source == InternalValue || f.format == "" {
		return f.kind.Decode(raw)
	}
	var zero T
	layout, err := f.layout()
	if err != nil {
		return zero, err
	}
	t, err := layout.Parse(raw)
	if err != nil {
		return zero, err
	}
	return f.kind.FromTime(t), nil
}

func (f *Field[T]) layout() (pattern.Layout, error) {
	layout, err := pattern.Compile(f.format)
	if err == nil {
		err = layout.Require(f.kind.Fields)
	}
	if err == nil && f.kind.Allowed != 0 {
		err = layout.Allow(f.kind.Allowed)
	}
	if err != nil {
		return pattern.Layout{}, errs.Wrap(errs.InvalidFormat, f.msg(Idle, "display pattern"), err)
	}
	return layout, nil
}

// waitTimeout is the field override, shortened to the context deadline.
func (f *Field[T]) waitTimeout(ctx context.Context) time.Duration {
	timeout := f.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining < time.Millisecond {
			remaining = time.Millisecond
		}
		if timeout == 0 || remaining < timeout {
			timeout = remaining
		}
	}
	return timeout
}

func (f *Field[T]) overlayErr(err error) error {
	switch {
	case err == nil:
		return nil
	case isTimeout(err):
		return errs.Wrap(errs.DeadlineExceeded, f.msg(AwaitingOverlayClose, "overlay "+f.kind.Overlay+" still visible"), err)
	default:
		return errs.Wrap(errs.Unresolved, f.msg(AwaitingOverlayClose, "wait for overlay "+f.kind.Overlay), err)
	}
}

func (f *Field[T]) context(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return obs.WithField(ctx, f.kind.Name+" "+f.name)
}

func (f *Field[T]) msg(phase Phase, what string) string {
	if phase == Idle {
		return fmt.Sprintf("%s field %q: %s", f.kind.Name, f.name, what)
	}
	return fmt.Sprintf("%s field %q: %s: %s", f.kind.Name, f.name, phase, what)
}

func isTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}
