package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/zap"
)

const interruptBinding = "fcclipperInterrupt"

// Interrupt is one dialog seen on the page.
type Interrupt struct {
	Text string
	// Native marks alert, confirm and prompt dialogs. Those are accepted
	// before being published; otherwise the site's modal is still open.
	Native bool
}

// modalObserverJS reports the site's system modal each time it becomes
// visible. The modal is fixed-position, so offsetParent cannot be used to
// test visibility. It is installed on every new document so navigations
// keep it.
const modalObserverJS = `(() => {
  let shown = false;
  const check = () => {
    const modal = document.getElementById("sys-modal");
    const visible = !!modal && getComputedStyle(modal).display !== "none" &&
      getComputedStyle(modal).visibility !== "hidden" && modal.getClientRects().length > 0;
    if (visible && !shown) {
      const body = modal.querySelector(".modal-body") || modal;
      window.` + interruptBinding + `({text: (body.innerText || "").trim()});
    }
    shown = visible;
  };
  const start = () => {
    new MutationObserver(check).observe(document.documentElement, {
      subtree: true, childList: true, attributes: true, attributeFilter: ["class", "style"],
    });
    check();
  };
  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", start);
  } else {
    start();
  }
})()`

// watchInterrupts wires the page so that the site's error modal and native
// JavaScript dialogs are published on Interrupts as they happen.
func (s *Session) watchInterrupts() error {
	stop, err := s.page.Expose(interruptBinding, func(j gson.JSON) (interface{}, error) {
		s.publish(Interrupt{Text: j.Get("text").Str()})
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to bind interrupt detector: %w", err)
	}
	s.unexpose = stop

	if _, err := s.page.EvalOnNewDocument(modalObserverJS); err != nil {
		return fmt.Errorf("failed to install interrupt detector: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopWatch = cancel
	page := s.page.Context(ctx)
	wait := page.EachEvent(func(e *proto.PageJavascriptDialogOpening) {
		s.logger.Debug("native dialog", zap.String("type", string(e.Type)), zap.String("message", e.Message))
		if err := (proto.PageHandleJavaScriptDialog{Accept: true}).Call(page); err != nil {
			s.logger.Debug("failed to accept dialog", zap.Error(err))
		}
		s.publish(Interrupt{Text: e.Message, Native: true})
	})
	go wait()
	return nil
}

// publish never blocks; when nobody drains the channel the oldest
// notification is what matters and later ones are dropped.
func (s *Session) publish(in Interrupt) {
	select {
	case s.interrupts <- in:
		s.logger.Debug("interrupt detected", zap.String("text", in.Text), zap.Bool("native", in.Native))
	default:
		s.logger.Debug("interrupt dropped, queue full", zap.String("text", in.Text))
	}
}

// Interrupts delivers every dialog seen on the page.
func (s *Session) Interrupts() <-chan Interrupt {
	return s.interrupts
}
