package foodcity

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jadunn1/fcclipper/internal/browser"
)

const (
	testLoginURL     = "https://www.foodcity.com/home/login"
	testCouponsURL   = "https://www.foodcity.com/coupons/mycoupons"
	testDashboardURL = "https://www.foodcity.com/account/dashboard"
	accountKey       = "account"

	accountHTML = `<html><body><a href="/account">My Account</a>
<a class="dropdown-item" href="/account/orders">Orders</a>
<a class="dropdown-item" href="/account/dashboard">My Dashboard</a></body></html>`

	errorModalHTML = `<div id="sys-modal" aria-labelledby="sysModalLabel"><div class="modal-body">There was an error loading the coupon. Please try again.</div></div>`
	emptyModalHTML = `<div id="sys-modal" aria-labelledby="sysModalLabel"><div class="modal-body"></div></div>`
)

// fakePage plays the website. Pass numbers count visits to the coupons page.
type fakePage struct {
	mu sync.Mutex

	html    map[string]string
	current string

	couponsVisits int
	// interruptOn and timeoutOn map a pass to the status id whose wait
	// raises the error dialog or never finishes.
	interruptOn map[int]string
	timeoutOn   map[int]string
	// dialog is what interruptOn publishes.
	dialog     browser.Interrupt
	showMore   int
	loginStall bool
	// missing lists selectors WaitElement never finds.
	missing map[string]bool

	clicks      []string
	fills       map[string]string
	navigations []string
	closed      int
	interrupts  chan browser.Interrupt
}

func newFakePage(coupons string) *fakePage {
	return &fakePage{
		html: map[string]string{
			testLoginURL:   `<html><body><form id="login"></form></body></html>`,
			accountKey:     accountHTML,
			testCouponsURL: coupons,
		},
		interruptOn: map[int]string{},
		timeoutOn:   map[int]string{},
		dialog:      browser.Interrupt{Text: "There was an error loading the coupon. Please try again."},
		missing:     map[string]bool{},
		fills:       map[string]string{},
		interrupts:  make(chan browser.Interrupt, 8),
	}
}

// couponsHTML renders a coupons page with one clip button per id plus the
// modal twin that must be ignored.
func couponsHTML(pages int, extra string, ids ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="counters">`)
	b.WriteString(`<button type="button">Available Coupons  42</button>`)
	b.WriteString(`<button type="button">Loaded
	Coupons 7</button></div>`)
	fmt.Fprintf(&b, `<input type="hidden" id="hdnPageCount" value="%d">`, pages)
	for _, id := range ids {
		fmt.Fprintf(&b, `<div class="tile"><button id="%s">Load to Card</button><span id="%s">Clip</span></div>`,
			id, strings.ReplaceAll(id, "Coupon", "ClipTxt"))
	}
	b.WriteString(`<button id="CouponModal">Load to Card</button>`)
	b.WriteString(extra)
	b.WriteString(`</body></html>`)
	return b.String()
}

func (f *fakePage) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigations = append(f.navigations, url)
	f.current = url
	if url == testCouponsURL {
		f.couponsVisits++
	}
	return nil
}

func (f *fakePage) HTML(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	html, ok := f.html[f.current]
	if !ok {
		return "<html><body></body></html>", nil
	}
	return html, nil
}

func (f *fakePage) Fill(_ context.Context, selector, text string, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fills[selector] = text
	return nil
}

func (f *fakePage) Hover(context.Context, string) error { return nil }

func (f *fakePage) Click(_ context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, selector)
	if selector == "#showMore" {
		f.showMore--
	}
	return nil
}

func (f *fakePage) ClickAndWaitNavigation(_ context.Context, selector string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, selector)
	if f.loginStall {
		return fmt.Errorf("waiting for navigation: %w", context.DeadlineExceeded)
	}
	f.current = accountKey
	return nil
}

func (f *fakePage) WaitElement(_ context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[selector] {
		return fmt.Errorf("%s not found: %w", selector, context.DeadlineExceeded)
	}
	return nil
}

func (f *fakePage) WaitVisible(_ context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if selector == "#showMore" && f.showMore <= 0 {
		return fmt.Errorf("%s not visible: %w", selector, context.DeadlineExceeded)
	}
	return nil
}

func (f *fakePage) WaitHidden(ctx context.Context, selector string) error {
	f.mu.Lock()
	interrupt := f.interruptOn[f.couponsVisits]
	stall := f.timeoutOn[f.couponsVisits]
	dialog := f.dialog
	f.mu.Unlock()

	switch {
	case interrupt != "" && selector == idSelector(interrupt):
		f.interrupts <- dialog
		<-ctx.Done()
		return ctx.Err()
	case stall != "" && selector == idSelector(stall):
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (f *fakePage) WaitTrue(context.Context, string) error { return nil }

func (f *fakePage) Screenshot(context.Context) ([]byte, error) {
	return []byte("\x89PNG fake"), nil
}

func (f *fakePage) Interrupts() <-chan browser.Interrupt { return f.interrupts }

func (f *fakePage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakePage) clickCount(selector string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.clicks {
		if c == selector {
			n++
		}
	}
	return n
}
