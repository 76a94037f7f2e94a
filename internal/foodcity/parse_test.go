package foodcity

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := parseDocument(html)
	require.NoError(t, err)
	return doc
}

func TestParseCouponButtons(t *testing.T) {
	doc := mustParse(t, `<html><body>
<button id="Coupon_12">Load to Card</button><span id="ClipTxt_12"></span>
<button id="CouponModal_12">Load to Card</button>
<button>Load to Card</button>
<button id="Coupon_31"> Load
   to Card </button>
<button id="Details_5">View details</button>
</body></html>`)

	want := []CouponButton{
		{Index: 1, ControlID: "Coupon_12", StatusID: "ClipTxt_12"},
		{Index: 2, ControlID: "Coupon_31", StatusID: "ClipTxt_31"},
	}
	if diff := cmp.Diff(want, parseCouponButtons(doc)); diff != "" {
		t.Errorf("parseCouponButtons() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCouponButtonsEmpty(t *testing.T) {
	doc := mustParse(t, `<html><body><p>No coupons</p></body></html>`)
	assert.Empty(t, parseCouponButtons(doc))
}

func TestParsePageCount(t *testing.T) {
	tests := []struct {
		name string
		html string
		want int
	}{
		{"present", `<input id="hdnPageCount" value="4">`, 4},
		{"padded", `<input id="hdnPageCount" value=" 2 ">`, 2},
		{"absent", `<input id="other" value="4">`, 0},
		{"no value", `<input id="hdnPageCount">`, 0},
		{"garbage", `<input id="hdnPageCount" value="many">`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePageCount(mustParse(t, tt.html)))
		})
	}
}

func TestParseCounters(t *testing.T) {
	doc := mustParse(t, `<button>Available Coupons
		<span>318</span></button><button>Loaded Coupons <span>12</span></button>`)
	available, loaded := parseCounters(doc)
	assert.Equal(t, "Available Coupons 318", available)
	assert.Equal(t, "Loaded Coupons 12", loaded)

	available, loaded = parseCounters(mustParse(t, `<button>Sign In</button>`))
	assert.Equal(t, "0", available)
	assert.Equal(t, "0", loaded)
}

func TestDashboardLink(t *testing.T) {
	href, ok := dashboardLink(mustParse(t, accountHTML))
	assert.True(t, ok)
	assert.Equal(t, "/account/dashboard", href)

	_, ok = dashboardLink(mustParse(t, `<a class="dropdown-item">My Dashboard</a>`))
	assert.False(t, ok)
}

func TestErrorModal(t *testing.T) {
	text, ok := errorModal(mustParse(t, errorModalHTML))
	assert.True(t, ok)
	assert.Equal(t, "There was an error loading the coupon. Please try again.", text)

	_, ok = errorModal(mustParse(t, `<div id="sys-modal"></div>`))
	assert.False(t, ok, "modal without its label is not the system modal")
}

func TestParseBalanceOrder(t *testing.T) {
	doc := mustParse(t, `<div class="dfac">10 pts</div>
<div class="card-dash__brief">Fuel Bucks balance</div>
<div class="card-dash__brief extra">Fuel Bucks promo</div>`)

	want := []string{"Fuel Bucks balance", "10 pts"}
	if diff := cmp.Diff(want, parseBalance(doc)); diff != "" {
		t.Errorf("parseBalance() mismatch (-want +got):\n%s", diff)
	}
}

func TestIDSelector(t *testing.T) {
	assert.Equal(t, `[id="Coupon_1"]`, idSelector("Coupon_1"))
}
