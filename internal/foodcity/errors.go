package foodcity

import "errors"

var (
	// ErrInterrupted marks a pass aborted by the site's error dialog.
	ErrInterrupted = errors.New("interrupted by error dialog")
	// ErrTooManyInterrupts ends a clip run once the retry ceiling is reached.
	ErrTooManyInterrupts = errors.New("too many interrupted passes")
	// ErrElementMissing reports a page element that had to be present.
	ErrElementMissing = errors.New("page element missing")
	// ErrUnexpectedDialog stops a clip run on a dialog other than the
	// coupon loading error.
	ErrUnexpectedDialog = errors.New("unexpected dialog")
)

// InterruptError carries the dialog text that aborted a click.
type InterruptError struct {
	Message string
	// Native is set when the dialog was a JavaScript alert that the browser
	// already accepted, so there is no site modal to dismiss.
	Native bool
}

func (e *InterruptError) Error() string {
	if e.Message == "" {
		return ErrInterrupted.Error()
	}
	return ErrInterrupted.Error() + ": " + e.Message
}

func (e *InterruptError) Unwrap() error {
	return ErrInterrupted
}
