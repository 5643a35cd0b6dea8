package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/kraklabs/depconfuse/internal/browserbin"
)

// RunSetup executes the `setup` subcommand: ensure a usable browser
// binary exists, downloading one if necessary (spec.md §6).
func RunSetup(f SetupFlags, out io.Writer, log *slog.Logger) (int, error) {
	result, err := browserbin.Ensure(f.ChromePath)
	if err != nil {
		return 1, err
	}

	if f.Global.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return 0, enc.Encode(result)
	}

	if result.Downloaded {
		fmt.Fprintln(out, "browser binary ready (auto-discovered or downloaded)")
	} else {
		fmt.Fprintf(out, "browser binary ready: %s\n", result.ChromePath)
	}
	log.Debug("setup.browser.ready", "chrome_path", result.ChromePath)
	return 0, nil
}
