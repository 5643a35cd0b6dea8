// Package alert implements the optional Telegram forwarder for High+
// findings (spec.md §6 "Environment", gated by --telegram). It is a thin
// adapter: read bot credentials from the environment, POST a formatted
// message per qualifying finding.
package alert

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/kraklabs/depconfuse/internal/scan"
)

const (
	envBotToken = "DEPCONFUSE_TELEGRAM_BOT_TOKEN"
	envChatID   = "DEPCONFUSE_TELEGRAM_CHAT_ID"
)

// Forwarder posts alert messages to a Telegram chat via the Bot API.
type Forwarder struct {
	client  *http.Client
	token   string
	chatID  string
	apiBase string
}

// NewFromEnv builds a Forwarder from DEPCONFUSE_TELEGRAM_BOT_TOKEN and
// DEPCONFUSE_TELEGRAM_CHAT_ID. Returns ok=false when either is unset, in
// which case the caller should skip alerting rather than fail the scan.
func NewFromEnv(client *http.Client) (f *Forwarder, ok bool) {
	token := os.Getenv(envBotToken)
	chatID := os.Getenv(envChatID)
	if token == "" || chatID == "" {
		return nil, false
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Forwarder{
		client:  client,
		token:   token,
		chatID:  chatID,
		apiBase: "https://api.telegram.org",
	}, true
}

// ForwardFindings sends one message per target that has at least one
// High or Critical finding (spec.md "--telegram enable alert forwarder
// for High+"). Send failures are logged by the caller; they never abort
// the scan (spec.md §7 propagation policy — alerting is an external
// collaborator, not core).
func (f *Forwarder) ForwardFindings(ctx context.Context, target string, findings []scan.Finding) error {
	var qualifying []scan.Finding
	for _, fd := range findings {
		if fd.Severity == scan.SeverityCritical || fd.Severity == scan.SeverityHigh {
			qualifying = append(qualifying, fd)
		}
	}
	if len(qualifying) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "depconfuse: %s\n", target)
	for _, fd := range qualifying {
		fmt.Fprintf(&b, "[%s] %s (%s)\n", fd.Severity, fd.Name, fd.Class)
	}

	return f.send(ctx, b.String())
}

func (f *Forwarder) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", f.apiBase, f.token)
	form := url.Values{
		"chat_id": {f.chatID},
		"text":    {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("alert: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("alert: send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alert: telegram API returned %d", resp.StatusCode)
	}
	return nil
}
