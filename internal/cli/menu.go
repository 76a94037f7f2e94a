package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jadunn1/fcclipper/internal/locale"
)

var menuItems = []string{"menu_clip", "menu_balance", "menu_credentials", "menu_clear_cache", "menu_exit"}

// runMenu shows the numbered menu until the operator exits or input ends.
// A failed action is reported and the menu carries on.
func (a *App) runMenu(ctx context.Context) error {
	renderWelcome(a.Out, a.store.FirstName())

	for {
		fmt.Fprintln(a.Out)
		for _, item := range menuItems {
			fmt.Fprintln(a.Out, locale.T(item))
		}

		choice, err := a.prompter.Ask(ctx, locale.T("menu_prompt"))
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(a.Out)
				return nil
			}
			return err
		}

		var actionErr error
		switch choice {
		case "1":
			actionErr = a.clipCoupons(ctx, false)
		case "2":
			actionErr = a.fuelBucks(ctx)
		case "3":
			actionErr = a.promptCredentials(ctx)
		case "4":
			actionErr = a.clearCache()
		case "5":
			return nil
		default:
			fmt.Fprintln(a.Out, locale.T("menu_invalid", choice))
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if actionErr != nil {
			a.report(actionErr)
		}
		fmt.Fprintln(a.Out, rule())
		if err := pause(ctx, a.MenuPause); err != nil {
			return err
		}
	}
}

func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
