// Package cli implements the scan and setup subcommands and their flag
// surfaces (spec.md §6), adapted from the teacher's cmd/cie/main.go
// GNU-style pflag pattern: SetInterspersed(false) so each subcommand owns
// its own flag set, with a GlobalFlags struct carrying the cross-cutting
// --json/--verbose/--quiet surface.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kraklabs/depconfuse/internal/scan"
)

// GlobalFlags are recognized by every subcommand.
type GlobalFlags struct {
	JSON    bool
	NoColor bool
	Verbose bool
	Quiet   bool
}

// ScanFlags is the full `scan` subcommand flag surface (spec.md §6 table,
// plus the domain-stack --metrics-addr addition from SPEC_FULL.md §6).
type ScanFlags struct {
	Global GlobalFlags

	File          string
	Parallel      int
	Output        string
	Fast          bool
	ScopedOnly    bool
	SkipNpmCheck  bool
	MinConfidence string
	ChromePath    string
	Timeout       time.Duration
	RateLimit     float64
	Telegram      bool
	MetricsAddr   string

	Targets []string
}

// ParseScanFlags parses args (excluding the "scan" subcommand token
// itself) into a ScanFlags.
func ParseScanFlags(args []string) (ScanFlags, error) {
	fs := pflag.NewFlagSet("scan", pflag.ContinueOnError)
	fs.SetInterspersed(false)

	var f ScanFlags
	fs.StringVarP(&f.File, "file", "f", "", "read target URLs from file, one per line")
	fs.IntVarP(&f.Parallel, "parallel", "p", 1, "host-scheduler width")
	fs.StringVarP(&f.Output, "output", "o", "", "write report to file (default stdout)")
	fs.BoolVar(&f.Global.JSON, "json", false, "emit machine-readable report")
	fs.BoolVar(&f.Fast, "fast", false, "short settle debounce")
	fs.BoolVarP(&f.Global.Quiet, "quiet", "q", false, "suppress targets with no findings")
	fs.BoolVar(&f.ScopedOnly, "scoped-only", false, "drop unscoped candidates after filter stack")
	fs.BoolVar(&f.SkipNpmCheck, "skip-npm-check", false, "emit all candidates with class Unknown")
	fs.StringVar(&f.MinConfidence, "min-confidence", "low", "threshold: low|medium|high")
	fs.StringVar(&f.ChromePath, "chrome-path", "", "override browser binary (default: auto)")
	timeoutSecs := fs.Int("timeout", 30, "per-target deadline, seconds")
	fs.Float64Var(&f.RateLimit, "rate-limit", 10, "registry bucket size, requests/sec")
	fs.BoolVar(&f.Telegram, "telegram", false, "enable alert forwarder for High+ findings")
	fs.BoolVarP(&f.Global.Verbose, "verbose", "v", false, "log filtered-out candidates")
	fs.BoolVar(&f.Global.NoColor, "no-color", false, "disable colorized output")
	fs.StringVar(&f.MetricsAddr, "metrics-addr", "", "serve Prometheus /metrics on host:port")

	if err := fs.Parse(args); err != nil {
		return ScanFlags{}, err
	}
	f.Timeout = time.Duration(*timeoutSecs) * time.Second
	f.Targets = fs.Args()
	return f, nil
}

// ToConfig translates parsed flags into the shared scan.Config.
func (f ScanFlags) ToConfig() (scan.Config, error) {
	cfg := scan.DefaultConfig()
	conf, err := scan.ParseConfidence(f.MinConfidence)
	if err != nil {
		return scan.Config{}, err
	}

	cfg.Parallel = f.Parallel
	cfg.Fast = f.Fast
	cfg.ScopedOnly = f.ScopedOnly
	cfg.SkipNpmCheck = f.SkipNpmCheck
	cfg.MinConfidence = conf
	cfg.ChromePath = f.ChromePath
	cfg.Timeout = f.Timeout
	cfg.RateLimit = f.RateLimit
	cfg.Telegram = f.Telegram
	cfg.Verbose = f.Global.Verbose
	cfg.Quiet = f.Global.Quiet

	if cfg.Parallel < 1 {
		return scan.Config{}, fmt.Errorf("--parallel must be >= 1, got %d", cfg.Parallel)
	}
	return cfg, nil
}

// SetupFlags is the `setup` subcommand flag surface.
type SetupFlags struct {
	Global     GlobalFlags
	ChromePath string
}

// ParseSetupFlags parses args (excluding the "setup" subcommand token).
func ParseSetupFlags(args []string) (SetupFlags, error) {
	fs := pflag.NewFlagSet("setup", pflag.ContinueOnError)
	fs.SetInterspersed(false)

	var f SetupFlags
	fs.StringVar(&f.ChromePath, "chrome-path", "", "verify/install this binary instead of auto-discovery")
	fs.BoolVar(&f.Global.JSON, "json", false, "emit machine-readable result")
	fs.BoolVarP(&f.Global.Verbose, "verbose", "v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return SetupFlags{}, err
	}
	return f, nil
}
