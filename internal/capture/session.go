// Package capture drives a headless browser via go-rod's remote-debugging
// (CDP) control protocol, intercepting every script response for a
// target (spec.md §4.6). Session lifecycle follows the teacher pack's
// go-rod usage (other_examples: guiyumin-vget's BrowserExtractor): one
// launcher + browser connection per session, leased by the host
// scheduler and recreated only on crash, never reused across host groups
// (spec.md §4.8, §9 "Browser session lifecycle").
package capture

import (
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Session is a scoped, leasable browser resource: one browser process
// connection reused sequentially across every target in a host group.
type Session struct {
	browser *rod.Browser
	chrome  string
}

// NewSession launches (or connects to) a headless Chrome/Chromium binary.
// chromePath overrides auto-discovery when non-empty (--chrome-path).
func NewSession(chromePath string) (*Session, error) {
	l := launcher.New().Headless(true)
	if chromePath != "" {
		l = l.Bin(chromePath)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	return &Session{browser: browser, chrome: chromePath}, nil
}

// Close tears down the browser connection and process.
func (s *Session) Close() error {
	if s == nil || s.browser == nil {
		return nil
	}
	return s.browser.Close()
}

// Healthy reports whether the underlying browser connection still
// responds, used by the scheduler to decide whether a session must be
// recreated after a suspected crash.
func (s *Session) Healthy() bool {
	if s == nil || s.browser == nil {
		return false
	}
	_, err := s.browser.Pages()
	return err == nil
}
