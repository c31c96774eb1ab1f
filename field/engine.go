package field

import (
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Input is the part of a Playwright locator a field drives. A
// playwright.Locator resolving to the widget's <input> satisfies it.
type Input interface {
	Fill(value string, options ...playwright.LocatorFillOptions) error
	Press(key string, options ...playwright.LocatorPressOptions) error
	InputValue(options ...playwright.LocatorInputValueOptions) (string, error)
	Evaluate(expression string, arg interface{}, options ...playwright.LocatorEvaluateOptions) (interface{}, error)
}

// Overlays waits on document-scoped overlay elements.
type Overlays interface {
	// WaitHidden blocks until no element with the given tag is visible.
	// A zero timeout means the engine's default timeout.
	WaitHidden(tag string, timeout time.Duration) error
}

// PageOverlays waits for overlays through a Playwright page.
type PageOverlays struct {
	Page playwright.Page
}

// WaitHidden implements Overlays.
func (o PageOverlays) WaitHidden(tag string, timeout time.Duration) error {
	opts := playwright.LocatorWaitForOptions{
		State: playwright.WaitForSelectorStateHidden,
	}
	if timeout > 0 {
		opts.Timeout = playwright.Float(float64(timeout.Milliseconds()))
	}
	return o.Page.Locator(tag).First().WaitFor(opts)
}

// inputSelector selects the <input> child of the element with the given id.
func inputSelector(id string) string {
	return `[id="` + cssString(id) + `"] > input`
}

func cssString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)
	return r.Replace(s)
}

// Reads the host widget's value property. The bound element may be the host
// itself or its slotted <input>.
const hostValueScript = `(el, host) => {
	const widget = el.localName === host ? el : el.closest(host);
	const source = widget || el;
	const value = source.value;
	return value === undefined || value === null ? "" : String(value);
}`
