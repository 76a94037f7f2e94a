// Package foodcity drives the Food City website: signing in, clipping every
// digital coupon and reading the Fuel Bucks balance.
package foodcity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/jadunn1/fcclipper/internal/config"
)

const (
	defaultMaxTries        = 5
	defaultSignInTimeout   = 20 * time.Second
	defaultActionTimeout   = 30 * time.Second
	defaultShowMoreTimeout = 10 * time.Second
	defaultSettleDelay     = 2 * time.Second
)

type Options struct {
	DryRun   bool
	Headless bool
	// MaxTries caps the number of clip passes an error dialog may force.
	MaxTries        int
	SignInTimeout   time.Duration
	ActionTimeout   time.Duration
	ShowMoreTimeout time.Duration
	SettleDelay     time.Duration
	// LogDir receives the screenshot and HTML dump of a failed click.
	LogDir string
}

func (o Options) withDefaults() Options {
	if o.MaxTries < 1 {
		o.MaxTries = defaultMaxTries
	}
	if o.SignInTimeout <= 0 {
		o.SignInTimeout = defaultSignInTimeout
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = defaultActionTimeout
	}
	if o.ShowMoreTimeout <= 0 {
		o.ShowMoreTimeout = defaultShowMoreTimeout
	}
	if o.SettleDelay < 0 {
		o.SettleDelay = 0
	}
	return o
}

// Client runs the site flows. Every flow opens its own page and closes it
// before returning. Progress is written to out for the operator.
type Client struct {
	open   OpenFunc
	creds  config.Credentials
	opts   Options
	out    io.Writer
	logger *zap.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

func NewClient(open OpenFunc, creds config.Credentials, opts Options, out io.Writer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if creds.Domain == "" {
		creds.Domain = config.DefaultDomain
	}
	return &Client{
		open:   open,
		creds:  creds,
		opts:   opts.withDefaults(),
		out:    out,
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (c *Client) siteURL(path string) string {
	return "https://www." + c.creds.Domain + path
}

// resolve turns a link taken from the page into an absolute URL on the site.
func (c *Client) resolve(href string) (string, error) {
	base, err := url.Parse(c.siteURL("/"))
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (c *Client) openPage(ctx context.Context) (Page, error) {
	page, err := c.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open browser: %w", err)
	}
	return page, nil
}

func (c *Client) closePage(page Page) {
	if err := page.Close(); err != nil {
		c.logger.Debug("failed to close page", zap.Error(err))
	}
}

// timedOut reports whether err is a step timeout rather than the caller
// giving up.
func timedOut(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil
}
