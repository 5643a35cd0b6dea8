// Package browserbin implements the `setup` subcommand (spec.md §6): it
// ensures a usable headless browser binary exists, downloading one via
// go-rod's launcher if auto-discovery fails, grounded on the same
// launcher-construction pattern as internal/capture.Session (and, in
// the retrieval pack, guiyumin-vget's BrowserExtractor.createLauncher).
package browserbin

import (
	"fmt"

	"github.com/kraklabs/depconfuse/internal/capture"
)

// Result reports the outcome of ensuring a browser binary is available.
type Result struct {
	ChromePath string // the path ultimately used, empty if auto-resolved by go-rod
	Downloaded bool   // best-effort: true if no override path was supplied
}

// Ensure verifies that chromePath (or an auto-discovered/auto-downloaded
// binary, when chromePath is empty) can actually launch and respond to
// the control protocol. go-rod's launcher downloads a matching Chromium
// build automatically on first Launch() when no binary is found, so a
// successful session here is sufficient proof of "usable browser binary
// exists".
func Ensure(chromePath string) (Result, error) {
	session, err := capture.NewSession(chromePath)
	if err != nil {
		return Result{}, fmt.Errorf("browser setup: %w", err)
	}
	defer session.Close()

	if !session.Healthy() {
		return Result{}, fmt.Errorf("browser setup: launched but did not respond")
	}

	return Result{ChromePath: chromePath, Downloaded: chromePath == ""}, nil
}
