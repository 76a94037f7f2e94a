package foodcity

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jadunn1/fcclipper/internal/locale"
)

const signedInMarker = "My Account"

// SignIn submits the login form and reports whether every mustContain string
// (default "My Account") shows up on the resulting page. A timeout or a
// missing marker is a failed sign-in, not an error.
func (c *Client) SignIn(ctx context.Context, page Page, mustContain ...string) (bool, error) {
	if len(mustContain) == 0 {
		mustContain = []string{signedInMarker}
	}
	logger := c.logger.Named("signin")

	fmt.Fprintln(c.out, locale.T("signing_in"))

	if err := page.Navigate(ctx, c.siteURL("/home/login")); err != nil {
		if timedOut(ctx, err) {
			logger.Debug("login page timed out", zap.Error(err))
			return false, nil
		}
		return false, fmt.Errorf("failed to open login page: %w", err)
	}
	if err := page.Fill(ctx, "#login_email", c.creds.Username, true); err != nil {
		return false, fmt.Errorf("failed to enter username: %w", err)
	}
	if err := page.Fill(ctx, "#login_password", c.creds.Password, false); err != nil {
		return false, fmt.Errorf("failed to enter password: %w", err)
	}

	if err := page.ClickAndWaitNavigation(ctx, "#btnLogin", c.opts.SignInTimeout); err != nil {
		if timedOut(ctx, err) {
			logger.Debug("timed out waiting for sign in", zap.Duration("timeout", c.opts.SignInTimeout))
			return false, nil
		}
		return false, fmt.Errorf("failed to submit login: %w", err)
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read page after login: %w", err)
	}
	for _, marker := range mustContain {
		if !strings.Contains(html, marker) {
			logger.Debug("sign in marker not found", zap.String("marker", marker))
			return false, nil
		}
	}
	logger.Debug("signed in", zap.String("domain", c.creds.Domain))
	return true, nil
}
