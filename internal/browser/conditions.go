package browser

import (
	"context"
	"errors"

	"github.com/adyen/shopcheck/internal/locator"
	"github.com/adyen/shopcheck/internal/wait"
)

// PresenceOf holds once loc resolves to an element, visible or not
func PresenceOf(s Session, loc locator.Locator) wait.Condition[Element] {
	return wait.Condition[Element]{
		Description: "presence of element located " + loc.String(),
		Check: func(ctx context.Context) (Element, bool, error) {
			el, err := s.Find(ctx, loc)
			if err != nil {
				return nil, false, notReadyIfMissing(err)
			}
			return el, true, nil
		},
	}
}

// VisibilityOf holds once loc resolves to a displayed element
func VisibilityOf(s Session, loc locator.Locator) wait.Condition[Element] {
	return wait.Condition[Element]{
		Description: "visibility of element located " + loc.String(),
		Check: func(ctx context.Context) (Element, bool, error) {
			el, err := s.Find(ctx, loc)
			if err != nil {
				return nil, false, notReadyIfMissing(err)
			}
			visible, err := el.IsDisplayed(ctx)
			if err != nil {
				return nil, false, notReadyIfMissing(err)
			}
			return el, visible, nil
		},
	}
}

// InvisibilityOf holds once loc is hidden or gone
func InvisibilityOf(s Session, loc locator.Locator) wait.Condition[bool] {
	return wait.Condition[bool]{
		Description: "invisibility of element located " + loc.String(),
		Check: func(ctx context.Context) (bool, bool, error) {
			el, err := s.Find(ctx, loc)
			if errors.Is(err, ErrElementNotFound) {
				return true, true, nil
			}
			if err != nil {
				return false, false, err
			}
			visible, err := el.IsDisplayed(ctx)
			if errors.Is(err, ErrElementNotFound) {
				return true, true, nil
			}
			if err != nil {
				return false, false, err
			}
			return !visible, !visible, nil
		},
	}
}

// a missing element is expected while the page is still rendering
func notReadyIfMissing(err error) error {
	if errors.Is(err, ErrElementNotFound) {
		return wait.NotReady(err)
	}
	return err
}
