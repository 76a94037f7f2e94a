package browser

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCloseOnZeroSession(t *testing.T) {
	s := &Session{logger: zaptest.NewLogger(t)}

	assert.NoError(t, s.Close())
	// second call returns the cached result
	assert.NoError(t, s.Close())
}

func TestPublishDoesNotBlock(t *testing.T) {
	s := &Session{logger: zaptest.NewLogger(t), interrupts: make(chan Interrupt, 2)}

	s.publish(Interrupt{Text: "first"})
	s.publish(Interrupt{Text: "second", Native: true})
	s.publish(Interrupt{Text: "third"})

	assert.Equal(t, Interrupt{Text: "first"}, <-s.Interrupts())
	assert.Equal(t, Interrupt{Text: "second", Native: true}, <-s.Interrupts())
	select {
	case in := <-s.Interrupts():
		t.Fatalf("unexpected interrupt %q", in.Text)
	default:
	}
}

func openLocalChrome(t *testing.T) *Session {
	t.Helper()
	if os.Getenv("FCCLIPPER_BROWSER_TESTS") == "" {
		t.Skip("Skipping browser-dependent test")
	}

	s, err := Open(context.Background(), Options{Headless: true, NoSandbox: true, ViewportWidth: 700}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func htmlURL(html string) string {
	return "data:text/html;charset=utf-8," + url.PathEscape(html)
}

func nextInterrupt(t *testing.T, s *Session) Interrupt {
	t.Helper()
	select {
	case in := <-s.Interrupts():
		return in
	case <-time.After(10 * time.Second):
		t.Fatal("no interrupt published")
		return Interrupt{}
	}
}

func TestOpenAgainstLocalChrome(t *testing.T) {
	s := openLocalChrome(t)

	require.NoError(t, s.Navigate(context.Background(), "about:blank"))
	html, err := s.HTML(context.Background())
	require.NoError(t, err)
	assert.Contains(t, html, "<html")
}

// The site's modal is a fixed-position Bootstrap dialog revealed after load.
const sysModalPage = `<html><head><style>
.modal { display: none; position: fixed; top: 0; left: 0; width: 100%; height: 100%; }
.modal.show { display: block; }
</style></head><body>
<div id="sys-modal" class="modal" aria-labelledby="sysModalLabel">
  <div class="modal-body">There was an error loading the coupon.</div>
  <button id="btn-sys-modal">OK</button>
</div>
<script>setTimeout(() => document.getElementById("sys-modal").classList.add("show"), 300);</script>
</body></html>`

func TestInterruptsReportSiteModal(t *testing.T) {
	s := openLocalChrome(t)

	require.NoError(t, s.Navigate(context.Background(), htmlURL(sysModalPage)))

	in := nextInterrupt(t, s)
	assert.Equal(t, Interrupt{Text: "There was an error loading the coupon."}, in)
}

func TestInterruptsReportNativeDialog(t *testing.T) {
	s := openLocalChrome(t)

	page := `<html><body><script>setTimeout(() => alert("Session expired"), 300);</script></body></html>`
	require.NoError(t, s.Navigate(context.Background(), htmlURL(page)))

	in := nextInterrupt(t, s)
	assert.Equal(t, Interrupt{Text: "Session expired", Native: true}, in)
}
