package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kraklabs/depconfuse/internal/scan"
)

// LoadTargets resolves the final target URL list: positional args plus,
// when --file is set, one URL per non-blank, non-comment line of that
// file. Duplicate URLs are preserved in first-seen order (the scheduler
// groups by host, so duplicates across different hosts are harmless and
// duplicates of the same URL simply scan twice — not rejected, since the
// spec does not ask for de-duplication at this layer).
func LoadTargets(positional []string, filePath string, cfg scan.Config) ([]scan.Target, error) {
	raw := append([]string{}, positional...)

	if filePath != "" {
		lines, err := readLines(filePath)
		if err != nil {
			return nil, fmt.Errorf("config: read target file %q: %w", filePath, err)
		}
		raw = append(raw, lines...)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("config: no targets supplied (pass URLs or --file)")
	}

	targets := make([]scan.Target, 0, len(raw))
	for _, u := range raw {
		t, err := scan.NewTarget(u, cfg)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}
