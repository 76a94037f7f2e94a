// Package browser owns the headless Chrome used to drive the store website.
package browser

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"go.uber.org/zap"
)

const defaultActionTimeout = 30 * time.Second

type Options struct {
	Headless       bool
	UserDataDir    string
	UserAgent      string
	AcceptLanguage string
	ViewportWidth  int
	ViewportHeight int
	DisableImages  bool
	NoSandbox      bool
	// ActionTimeout bounds every page action whose context has no deadline.
	ActionTimeout time.Duration
}

// Session is one browser and one stealth page. It is opened for a single
// operation and closed when that operation ends.
type Session struct {
	opts     Options
	logger   *zap.Logger
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page

	interrupts  chan Interrupt
	stopWatch   context.CancelFunc
	unexpose    func() error
	closeOnce   sync.Once
	closeResult error
}

// Open launches Chrome and prepares the page. On failure everything started
// so far is torn down before returning.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = defaultActionTimeout
	}

	s := &Session{
		opts:       opts,
		logger:     logger,
		interrupts: make(chan Interrupt, 8),
	}
	if err := s.setupBrowser(ctx); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.setupPage(ctx); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.watchInterrupts(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) setupBrowser(ctx context.Context) error {
	// leakless deadlocks on Windows, see go-rod/rod#853
	useLeakless := runtime.GOOS != "windows"

	s.launcher = launcher.New().
		Context(ctx).
		Leakless(useLeakless).
		Headless(s.opts.Headless)

	if s.opts.UserDataDir != "" {
		s.launcher = s.launcher.UserDataDir(s.opts.UserDataDir)
		s.logger.Debug("browser profile", zap.String("path", s.opts.UserDataDir))
	}
	if s.opts.DisableImages {
		s.launcher = s.launcher.Set("blink-settings", "imagesEnabled=false")
	}
	if s.opts.NoSandbox {
		s.launcher = s.launcher.NoSandbox(true)
	}

	if chromePath, ok := launcher.LookPath(); ok {
		s.launcher = s.launcher.Bin(chromePath)
		s.logger.Debug("using system chrome", zap.String("path", chromePath))
	}

	url, err := s.launcher.Launch()
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "ProcessSingleton") || strings.Contains(msg, "SingletonLock") {
			return fmt.Errorf("browser profile %s is in use by another Chrome, close it and try again: %w",
				s.opts.UserDataDir, err)
		}
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	s.browser = rod.New().Context(ctx).ControlURL(url)
	if err := s.browser.Connect(); err != nil {
		s.browser = nil
		return fmt.Errorf("failed to connect to browser: %w", err)
	}
	return nil
}

func (s *Session) setupPage(ctx context.Context) error {
	incognito, err := s.browser.Incognito()
	if err != nil {
		return fmt.Errorf("failed to create incognito context: %w", err)
	}

	page, err := stealth.Page(incognito)
	if err != nil {
		return fmt.Errorf("failed to create stealth page: %w", err)
	}
	s.page = page

	if s.opts.UserAgent != "" {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      s.opts.UserAgent,
			AcceptLanguage: s.opts.AcceptLanguage,
		})
		if err != nil {
			return fmt.Errorf("failed to set user agent: %w", err)
		}
	}
	if s.opts.AcceptLanguage != "" {
		if _, err := page.SetExtraHeaders([]string{"Accept-Language", s.opts.AcceptLanguage}); err != nil {
			return fmt.Errorf("failed to set headers: %w", err)
		}
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.opts.ViewportWidth,
		Height:            s.opts.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to set viewport: %w", err)
	}
	return nil
}

// Close releases the page, the browser and the launcher. Safe to call more
// than once and on a partially opened Session.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		var errs []error
		if s.stopWatch != nil {
			s.stopWatch()
		}
		if s.unexpose != nil {
			if err := s.unexpose(); err != nil {
				s.logger.Debug("unbind interrupt detector", zap.Error(err))
			}
		}
		if s.page != nil {
			if err := s.page.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close page: %w", err))
			}
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close browser: %w", err))
			}
		}
		if s.launcher != nil {
			s.launcher.Cleanup()
		}
		s.closeResult = errors.Join(errs...)
		s.logger.Debug("browser session closed")
	})
	return s.closeResult
}

// scoped binds the page to ctx, adding the action timeout when ctx carries
// no deadline of its own.
func (s *Session) scoped(ctx context.Context) (*rod.Page, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return s.page.Context(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.ActionTimeout)
	return s.page.Context(ctx), cancel
}

// Navigate loads url and waits until the network is almost idle.
func (s *Session) Navigate(ctx context.Context, url string) error {
	page, cancel := s.scoped(ctx)
	defer cancel()

	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	wait()
	return page.GetContext().Err()
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	page, cancel := s.scoped(ctx)
	defer cancel()
	return page.HTML()
}

// Fill types text into the element. With clear set the current value is
// selected first so typing replaces it.
func (s *Session) Fill(ctx context.Context, selector, text string, clear bool) error {
	page, cancel := s.scoped(ctx)
	defer cancel()

	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	if clear {
		if err := el.SelectAllText(); err != nil {
			return err
		}
	}
	return el.Input(text)
}

func (s *Session) Hover(ctx context.Context, selector string) error {
	page, cancel := s.scoped(ctx)
	defer cancel()

	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	return el.Hover()
}

func (s *Session) Click(ctx context.Context, selector string) error {
	page, cancel := s.scoped(ctx)
	defer cancel()

	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// ClickAndWaitNavigation clicks selector and waits up to timeout for the
// navigation it triggers to load.
func (s *Session) ClickAndWaitNavigation(ctx context.Context, selector string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	page := s.page.Context(ctx)

	wait := page.WaitNavigation(proto.PageLifecycleEventNameLoad)
	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return err
	}
	wait()
	return ctx.Err()
}

// WaitElement waits until selector exists in the DOM.
func (s *Session) WaitElement(ctx context.Context, selector string) error {
	page, cancel := s.scoped(ctx)
	defer cancel()
	_, err := page.Element(selector)
	return err
}

func (s *Session) WaitVisible(ctx context.Context, selector string) error {
	page, cancel := s.scoped(ctx)
	defer cancel()

	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (s *Session) WaitHidden(ctx context.Context, selector string) error {
	page, cancel := s.scoped(ctx)
	defer cancel()

	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	return el.WaitInvisible()
}

// WaitTrue polls the JavaScript function js until it returns true.
func (s *Session) WaitTrue(ctx context.Context, js string) error {
	page, cancel := s.scoped(ctx)
	defer cancel()
	return page.Wait(rod.Eval(js))
}

func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	page, cancel := s.scoped(ctx)
	defer cancel()
	return page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}
