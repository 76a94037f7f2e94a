package foodcity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jadunn1/fcclipper/internal/locale"
)

// FuelBucks signs in and returns the text fragments describing the Fuel
// Bucks balance from the account dashboard. A nil slice with a nil error
// means no balance could be read.
func (c *Client) FuelBucks(ctx context.Context) ([]string, error) {
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

	logger := c.logger.Named("balance")
	fmt.Fprintln(c.out, locale.T("getting_balance"))

	doc, err := c.snapshot(ctx, page)
	if err != nil {
		return nil, err
	}
	href, ok := dashboardLink(doc)
	if !ok {
		logger.Warn("dashboard link not found")
		return nil, nil
	}
	target, err := c.resolve(href)
	if err != nil {
		return nil, err
	}
	if err := page.Navigate(ctx, target); err != nil {
		return nil, fmt.Errorf("failed to open dashboard: %w", err)
	}

	for _, sel := range []string{".card-dash__brief", ".dfac"} {
		if err := page.WaitElement(ctx, sel); err != nil {
			if timedOut(ctx, err) {
				logger.Warn("dashboard did not show the balance", zap.String("selector", sel), zap.Error(err))
				return nil, nil
			}
			return nil, fmt.Errorf("failed waiting for %s: %w", sel, err)
		}
	}

	doc, err = c.snapshot(ctx, page)
	if err != nil {
		return nil, err
	}
	fragments := parseBalance(doc)
	if len(fragments) == 0 {
		return nil, nil
	}
	logger.Debug("balance read", zap.Int("fragments", len(fragments)))
	return fragments, nil
}
