package foodcity

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	loadToCardText   = "Load to Card"
	couponErrorText  = "There was an error loading the coupon"
	errorModalSelect = `div#sys-modal[aria-labelledby="sysModalLabel"]`
)

// CouponButton is one "Load to Card" control found on the coupons page.
// StatusID names the span that hides once the coupon is on the card.
type CouponButton struct {
	Index     int
	ControlID string
	StatusID  string
}

func parseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

// snapshot parses the page as it is right now.
func (c *Client) snapshot(ctx context.Context, page Page) (*goquery.Document, error) {
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return parseDocument(html)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// buttonText returns the text of the first button mentioning label, or "0".
func buttonText(doc *goquery.Document, label string) string {
	text := "0"
	doc.Find("button").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := normalizeSpace(s.Text()); strings.Contains(t, label) {
			text = t
			return false
		}
		return true
	})
	return text
}

func parseCounters(doc *goquery.Document) (available, loaded string) {
	return buttonText(doc, "Available Coupons"), buttonText(doc, "Loaded Coupons")
}

// parsePageCount reads the hidden page counter; absent or garbage means 0.
func parsePageCount(doc *goquery.Document) int {
	value, ok := doc.Find("input#hdnPageCount").Attr("value")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

// parseCouponButtons lists the clip buttons in document order. Buttons of
// the coupon detail modal share the label and are skipped.
func parseCouponButtons(doc *goquery.Document) []CouponButton {
	var buttons []CouponButton
	doc.Find("button").Each(func(_ int, s *goquery.Selection) {
		if !strings.Contains(normalizeSpace(s.Text()), loadToCardText) {
			return
		}
		id, _ := s.Attr("id")
		if id == "" || strings.Contains(id, "Modal") {
			return
		}
		buttons = append(buttons, CouponButton{
			Index:     len(buttons) + 1,
			ControlID: id,
			StatusID:  strings.ReplaceAll(id, "Coupon", "ClipTxt"),
		})
	})
	return buttons
}

// parseBalance collects the dashboard cards mentioning Fuel Bucks followed
// by every points cell.
func parseBalance(doc *goquery.Document) []string {
	var fragments []string
	doc.Find(`div[class="card-dash__brief"]`).Each(func(_ int, s *goquery.Selection) {
		if text := s.Text(); strings.Contains(text, "Fuel Bucks") {
			fragments = append(fragments, strings.TrimSpace(text))
		}
	})
	doc.Find(`div[class="dfac"]`).Each(func(_ int, s *goquery.Selection) {
		fragments = append(fragments, strings.TrimSpace(s.Text()))
	})
	return fragments
}

func dashboardLink(doc *goquery.Document) (string, bool) {
	var href string
	var found bool
	doc.Find(".dropdown-item").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !strings.Contains(s.Text(), "My Dashboard") {
			return true
		}
		href, found = s.Attr("href")
		return !found
	})
	return href, found
}

// errorModal returns the text of the site's system modal. ok is false when
// the modal container is not in the page at all.
func errorModal(doc *goquery.Document) (text string, ok bool) {
	modal := doc.Find(errorModalSelect)
	if modal.Length() == 0 {
		return "", false
	}
	return normalizeSpace(modal.First().Text()), true
}

func idSelector(id string) string {
	return `[id="` + id + `"]`
}
