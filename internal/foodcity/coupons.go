package foodcity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jadunn1/fcclipper/internal/browser"
	"github.com/jadunn1/fcclipper/internal/locale"
)

const pageLoadedJS = `() => document.getElementById("hdnLoadingNextPage").value == "0"`

// ClipResult summarizes one clip run.
type ClipResult struct {
	Available string
	Loaded    string
	// Found is the number of clip buttons on the last pass.
	Found int
	// Clipped counts coupons clipped during the last pass only.
	Clipped int
	Passes  int
	DryRun  bool
}

// ClipCoupons signs in and clips every coupon on the coupons page. A nil
// result with a nil error means sign-in failed.
//
// When the site's error dialog interrupts a pass the dialog is dismissed and
// the whole pass starts over, up to MaxTries passes. Giving up returns the
// partial result together with ErrTooManyInterrupts.
func (c *Client) ClipCoupons(ctx context.Context) (*ClipResult, error) {
	page, err := c.openPage(ctx)
	if err != nil {
		return nil, err
	}
	defer c.closePage(page)

	ok, err := c.SignIn(ctx, page)
	if err != nil {
		return nil, err
	}
	if !ok {
		fmt.Fprintln(c.out, locale.T("sign_in_failed"))
		return nil, nil
	}

	logger := c.logger.Named("coupons")
	result := &ClipResult{DryRun: c.opts.DryRun}

	for tries := 1; ; {
		result.Passes++
		err := c.clipPass(ctx, page, result)

		var interrupt *InterruptError
		switch {
		case err == nil:
			if c.opts.DryRun {
				fmt.Fprintln(c.out, locale.T("coupons_found", result.Found))
			} else {
				fmt.Fprintln(c.out, locale.T("coupons_clipped", result.Clipped))
			}
			if !c.opts.Headless {
				c.sleep(ctx, c.opts.SettleDelay)
			}
			return result, nil

		case errors.As(err, &interrupt):
			logger.Warn("pass interrupted", zap.Int("pass", result.Passes),
				zap.String("dialog", interrupt.Message), zap.Bool("native", interrupt.Native))
			if !interrupt.Native {
				if err := c.dismissDialog(ctx, page); err != nil {
					logger.Debug("failed to dismiss dialog", zap.Error(err))
				}
			}
			tries++
			if tries > c.opts.MaxTries {
				fmt.Fprintln(c.out, locale.T("coupons_gave_up", result.Passes))
				return result, fmt.Errorf("%w after %d passes: %s", ErrTooManyInterrupts, result.Passes, interrupt.Message)
			}
			fmt.Fprintln(c.out, locale.T("coupons_interrupted", tries, c.opts.MaxTries))

		default:
			return result, err
		}
	}
}

func (c *Client) clipPass(ctx context.Context, page Page, result *ClipResult) error {
	drain(page.Interrupts())

	fmt.Fprintln(c.out, locale.T("retrieving_coupons"))
	if err := page.Navigate(ctx, c.siteURL("/coupons/mycoupons")); err != nil {
		return fmt.Errorf("failed to open coupons page: %w", err)
	}

	doc, err := c.snapshot(ctx, page)
	if err != nil {
		return err
	}
	if result.Passes == 1 {
		result.Available, result.Loaded = parseCounters(doc)
		fmt.Fprintln(c.out, result.Available)
		fmt.Fprintln(c.out, result.Loaded)
	}

	if c.opts.DryRun {
		fmt.Fprint(c.out, locale.T("dry_run_not"))
	}
	fmt.Fprintln(c.out, locale.T("clipping_coupons"))

	if err := c.showAll(ctx, page, parsePageCount(doc)); err != nil {
		return err
	}

	doc, err = c.snapshot(ctx, page)
	if err != nil {
		return err
	}
	buttons := parseCouponButtons(doc)
	result.Found = len(buttons)
	result.Clipped = 0
	c.logger.Debug("coupon buttons found", zap.Int("count", len(buttons)), zap.Int("pass", result.Passes))

	return c.clickCoupons(ctx, page, buttons, result)
}

// showAll presses "show more" until every page of coupons is on screen. The
// button disappearing or any step timing out ends the loop quietly.
func (c *Client) showAll(ctx context.Context, page Page, pages int) error {
	for shown := 1; shown < pages; shown++ {
		if err := c.showMore(ctx, page); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Debug("pagination ended", zap.Int("shown", shown), zap.Int("pages", pages), zap.Error(err))
			return nil
		}
	}
	return nil
}

func (c *Client) showMore(ctx context.Context, page Page) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ShowMoreTimeout)
	defer cancel()

	if err := page.WaitVisible(ctx, "#showMore"); err != nil {
		return err
	}
	if err := page.Click(ctx, "#showMore"); err != nil {
		return err
	}
	return page.WaitTrue(ctx, pageLoadedJS)
}

func (c *Client) clickCoupons(ctx context.Context, page Page, buttons []CouponButton, result *ClipResult) error {
	for _, b := range buttons {
		fmt.Fprintln(c.out, locale.T("coupon_button", "#"+b.ControlID))
		if c.opts.DryRun {
			continue
		}

		if err := c.clipCoupon(ctx, page, b); err != nil {
			fmt.Fprintln(c.out, locale.T("coupons_partial", b.Index-1))
			c.writeDiagnostics(ctx, page)
			return c.classifyClickError(ctx, page, b, err)
		}
		result.Clipped = b.Index
	}
	return nil
}

// clipCoupon clicks one button while waiting for its status text to hide.
// A dialog showing up meanwhile aborts both. The coupon loading error is
// returned as an InterruptError; any other dialog is ErrUnexpectedDialog.
func (c *Client) clipCoupon(ctx context.Context, page Page, b CouponButton) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sel := idSelector(b.ControlID)
		if err := page.Hover(gctx, sel); err != nil {
			return err
		}
		return page.Click(gctx, sel)
	})
	g.Go(func() error {
		waitCtx, waitCancel := context.WithTimeout(gctx, c.opts.ActionTimeout)
		defer waitCancel()
		return page.WaitHidden(waitCtx, idSelector(b.StatusID))
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case in := <-page.Interrupts():
		cancel()
		<-done
		return dialogError(in)
	}
}

func dialogError(in browser.Interrupt) error {
	if strings.Contains(normalizeSpace(in.Text), couponErrorText) {
		return &InterruptError{Message: in.Text, Native: in.Native}
	}
	return fmt.Errorf("%w: %s", ErrUnexpectedDialog, in.Text)
}

// classifyClickError decides what a failed click means. A timeout with the
// coupon error still showing in the page is an interrupt; anything else
// stops the run.
func (c *Client) classifyClickError(ctx context.Context, page Page, b CouponButton, err error) error {
	var interrupt *InterruptError
	if errors.As(err, &interrupt) || !timedOut(ctx, err) {
		return err
	}

	doc, herr := c.snapshot(ctx, page)
	if herr != nil {
		return errors.Join(err, herr)
	}
	text, ok := errorModal(doc)
	if !ok {
		return errors.Join(
			fmt.Errorf("coupon %s did not clip: %w", b.ControlID, err),
			fmt.Errorf("%w: %s", ErrElementMissing, errorModalSelect),
		)
	}
	if strings.Contains(text, couponErrorText) {
		return &InterruptError{Message: text}
	}
	return fmt.Errorf("coupon %s did not clip: %w", b.ControlID, err)
}

// dismissDialog closes the site's error modal so the next pass can run.
func (c *Client) dismissDialog(ctx context.Context, page Page) error {
	c.sleep(ctx, c.opts.SettleDelay)

	ctx, cancel := context.WithTimeout(ctx, c.opts.ActionTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return page.Click(gctx, "#btn-sys-modal") })
	g.Go(func() error { return page.WaitHidden(gctx, "#sys-modal") })
	return g.Wait()
}

func drain(ch <-chan browser.Interrupt) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
