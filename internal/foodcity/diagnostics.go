package foodcity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jadunn1/fcclipper/internal/locale"
)

const diagnosticsLayout = "2006-01-02-15-04-05"

// writeDiagnostics saves a screenshot and the page HTML next to the log
// file. Failures are logged; the click error is what the caller reports.
func (c *Client) writeDiagnostics(ctx context.Context, page Page) {
	logger := c.logger.Named("diagnostics")
	if c.opts.LogDir == "" {
		logger.Debug("no log dir, skipping diagnostics")
		return
	}
	if err := os.MkdirAll(c.opts.LogDir, 0755); err != nil {
		logger.Warn("failed to create log dir", zap.String("dir", c.opts.LogDir), zap.Error(err))
		return
	}

	ts := c.now().Format(diagnosticsLayout)
	pngPath := filepath.Join(c.opts.LogDir, "coupon_err__png-"+ts+".png")
	htmlPath := filepath.Join(c.opts.LogDir, "coupon_err_html-"+ts+".html")

	if png, err := page.Screenshot(ctx); err != nil {
		logger.Warn("failed to capture screenshot", zap.Error(err))
	} else if err := os.WriteFile(pngPath, png, 0644); err != nil {
		logger.Warn("failed to write screenshot", zap.String("path", pngPath), zap.Error(err))
	}

	if html, err := page.HTML(ctx); err != nil {
		logger.Warn("failed to capture html", zap.Error(err))
	} else if err := os.WriteFile(htmlPath, []byte(html), 0644); err != nil {
		logger.Warn("failed to write html", zap.String("path", htmlPath), zap.Error(err))
	}

	fmt.Fprintln(c.out, locale.T("diagnostics_written", c.opts.LogDir, ts))
	logger.Warn("coupon click failed, diagnostics written", zap.String("png", pngPath), zap.String("html", htmlPath))
}
