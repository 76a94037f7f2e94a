package foodcity

import (
	"context"
	"time"

	"github.com/jadunn1/fcclipper/internal/browser"
)

// Page is the browser surface the flows drive. browser.Session implements
// it; tests use an in-memory fake.
//
// Methods without their own timeout argument are bounded by the context's
// deadline, or by the implementation's default action timeout when the
// context has none.
type Page interface {
	Navigate(ctx context.Context, url string) error
	HTML(ctx context.Context) (string, error)
	Fill(ctx context.Context, selector, text string, clear bool) error
	Hover(ctx context.Context, selector string) error
	Click(ctx context.Context, selector string) error
	ClickAndWaitNavigation(ctx context.Context, selector string, timeout time.Duration) error
	WaitElement(ctx context.Context, selector string) error
	WaitVisible(ctx context.Context, selector string) error
	WaitHidden(ctx context.Context, selector string) error
	WaitTrue(ctx context.Context, js string) error
	Screenshot(ctx context.Context) ([]byte, error)
	// Interrupts delivers dialogs as the site shows them.
	Interrupts() <-chan browser.Interrupt
	Close() error
}

// OpenFunc starts a fresh browser page for one flow.
type OpenFunc func(ctx context.Context) (Page, error)
