// Package browser drives a headless Chrome session for backends that only
// expose a web chat page.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chromedp/chromedp"
)

// Bridge manages a Chrome profile and runs ask/answer round trips against a
// chat page.
type Bridge struct {
	profileDir string
	headless   bool
	logger     *slog.Logger
}

type BridgeConfig struct {
	ProfileDir string // Chrome user data dir; persists login cookies
	Headless   bool
	Logger     *slog.Logger
}

func NewBridge(cfg BridgeConfig) *Bridge {
	return &Bridge{
		profileDir: cfg.ProfileDir,
		headless:   cfg.Headless,
		logger:     cfg.Logger,
	}
}

// SelectorSet contains the CSS selectors for one chat website.
type SelectorSet struct {
	URL      string
	Input    string
	Submit   string
	Response string
	Loading  string
}

// newContext creates a chromedp context backed by the bridge's profile.
func (b *Bridge) newContext(parent context.Context) (context.Context, context.CancelFunc) {
	if err := os.MkdirAll(b.profileDir, 0o755); err != nil {
		b.logger.Error("failed to create profile dir", "dir", b.profileDir, "err", err)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserDataDir(b.profileDir),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
	)
	if b.headless {
		opts = append(opts, chromedp.Headless)
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	taskCtx, taskCancel := chromedp.NewContext(allocCtx)

	return taskCtx, func() {
		taskCancel()
		allocCancel()
	}
}

// Ask navigates to the chat page, submits the question, waits for the typing
// indicator to clear, and returns the last response block's text.
func (b *Bridge) Ask(ctx context.Context, sel SelectorSet, question string) (string, error) {
	taskCtx, cancel := b.newContext(ctx)
	defer cancel()

	taskCtx, taskCancel := context.WithTimeout(taskCtx, 120*time.Second)
	defer taskCancel()

	err := chromedp.Run(taskCtx,
		chromedp.Navigate(sel.URL),
		chromedp.WaitReady("body"),
		chromedp.WaitVisible(sel.Input, chromedp.ByQuery),
		chromedp.Sleep(1*time.Second),
		chromedp.Click(sel.Input, chromedp.ByQuery),
		chromedp.SendKeys(sel.Input, question, chromedp.ByQuery),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Click(sel.Submit, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("submit question: %w", err)
	}

	for i := 0; i < 120; i++ {
		time.Sleep(1 * time.Second)

		var loading bool
		err = chromedp.Run(taskCtx,
			chromedp.Evaluate(
				fmt.Sprintf(`document.querySelector('%s') !== null`, sel.Loading),
				&loading,
			),
		)
		if err != nil {
			break
		}
		if !loading {
			time.Sleep(500 * time.Millisecond)
			break
		}
	}

	var response string
	err = chromedp.Run(taskCtx,
		chromedp.Evaluate(
			fmt.Sprintf(`
				(function() {
					var blocks = document.querySelectorAll('%s');
					if (blocks.length === 0) return '';
					var last = blocks[blocks.length - 1];
					return last.innerText || last.textContent || '';
				})()
			`, sel.Response),
			&response,
		),
	)
	if err != nil {
		return "", fmt.Errorf("extract response: %w", err)
	}
	return response, nil
}
