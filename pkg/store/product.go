package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/storepilot/pkg/browser"
)

// OpenProduct navigates to the product's edit page. A session that was
// silently logged out redirects away from the product URL; that is
// detected and reported as ErrNotLoggedIn rather than acted through.
func (s *Session) OpenProduct(ctx context.Context, productID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if productID == "" {
		return fmt.Errorf("product id must not be empty")
	}
	if !s.loggedIn {
		return ErrNotLoggedIn
	}
	if s.productID == productID {
		return nil
	}

	s.productID = ""
	if err := s.driver.Navigate(s.productURL(productID), browser.NavigateOptions{WaitUntil: "load"}); err != nil {
		return err
	}
	if !strings.Contains(s.driver.URL(), fmt.Sprintf(s.cfg.ProductPath, productID)) {
		s.loggedIn = false
		return fmt.Errorf("redirected away from product %s: %w", productID, ErrNotLoggedIn)
	}
	if err := s.driver.Wait(browser.WaitOptions{Selector: s.cfg.Selectors.SaveButton, State: "visible"}); err != nil {
		return fmt.Errorf("product page did not render: %w", err)
	}

	s.productID = productID
	s.log.Debug().Str("product", productID).Msg("product page open")
	return nil
}

// SetDescription replaces the product's description and saves the
// page. The editor content is written through the DOM so it works for
// plain textareas and rich-text surfaces alike.
func (s *Session) SetDescription(ctx context.Context, productID, text string) error {
	if err := s.OpenProduct(ctx, productID); err != nil {
		return err
	}

	sel := s.cfg.Selectors
	if err := s.driver.Click(browser.ClickOptions{Selector: fmt.Sprintf(sel.ProductTab, s.cfg.DescriptionTab)}); err != nil {
		return fmt.Errorf("failed to open description tab: %w", err)
	}

	res, err := s.driver.Evaluate(fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		if (el.tagName === "TEXTAREA" || el.tagName === "INPUT") {
			el.value = %q;
		} else {
			el.innerHTML = %q;
		}
		el.dispatchEvent(new Event("input", { bubbles: true }));
		el.dispatchEvent(new Event("change", { bubbles: true }));
		return true;
	})()`, sel.DescriptionBox, text, text))
	if err != nil {
		return fmt.Errorf("failed to set description: %w", err)
	}
	if ok, _ := res.(bool); !ok {
		return fmt.Errorf("description editor %q not found", sel.DescriptionBox)
	}

	if err := s.driver.Click(browser.ClickOptions{Selector: sel.SaveButton}); err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	if err := s.driver.Wait(browser.WaitOptions{Selector: sel.SavedMarker, State: "visible"}); err != nil {
		return fmt.Errorf("save confirmation did not appear: %w", err)
	}

	s.log.Info().Str("product", productID).Int("chars", len(text)).Msg("description saved")
	return nil
}

// UploadImages expands the local patterns, opens the product's image
// tab and runs the batch upload. It returns the paths the widget
// confirmed.
func (s *Session) UploadImages(ctx context.Context, productID string, patterns []string) ([]string, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("no uploader configured")
	}

	paths, err := ExpandPatterns(patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no local files match %v", patterns)
	}

	if err := s.OpenProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := s.driver.Click(browser.ClickOptions{Selector: fmt.Sprintf(s.cfg.Selectors.ProductTab, s.cfg.ImagesTab)}); err != nil {
		return nil, fmt.Errorf("failed to open images tab: %w", err)
	}

	uploaded, err := s.uploader.UploadBatch(s.cfg.ImagesTab, paths)
	if err != nil {
		return uploaded, fmt.Errorf("batch upload for product %s: %w", productID, err)
	}
	s.log.Info().Str("product", productID).Int("requested", len(paths)).Int("confirmed", len(uploaded)).Msg("images uploaded")
	return uploaded, nil
}
