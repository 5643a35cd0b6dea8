package capture

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/kraklabs/depconfuse/internal/errors"
	"github.com/kraklabs/depconfuse/internal/scan"
)

const (
	longSettleDebounce  = 2 * time.Second
	shortSettleDebounce = 400 * time.Millisecond
)

// Capturer drives one navigation on a leased Session and collects every
// JavaScript response into a deduplicated scan.ScriptSet.
type Capturer struct{}

// NewCapturer returns a ready-to-use browser capture component.
func NewCapturer() *Capturer { return &Capturer{} }

// pendingResponse tracks a network response queued for body retrieval.
type pendingResponse struct {
	requestID proto.NetworkRequestID
	url       string
	mimeType  string
}

// Capture implements C6: it opens a new page on session, navigates to
// target.URL, and returns every captured script. Individual body-fetch
// failures are skipped without being logged; a navigation failure aborts
// the target with a capture error (spec.md §4.6, §7).
func (c *Capturer) Capture(ctx context.Context, target scan.Target, session *Session) (*scan.ScriptSet, error) {
	page, err := session.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, errors.Capture("capture.open_page", err)
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, target.Timeout)
	defer cancel()
	page = page.Context(navCtx)

	if err := (proto.NetworkEnable{}).Call(page); err != nil {
		return nil, errors.Capture("capture.network_enable", err)
	}

	scripts := scan.NewScriptSet()
	var mu sync.Mutex
	pending := make(map[proto.NetworkRequestID]pendingResponse)

	debounce := longSettleDebounce
	if target.Fast {
		debounce = shortSettleDebounce
	}

	idleTimer := time.NewTimer(debounce)
	defer idleTimer.Stop()
	resetIdle := func() {
		if !idleTimer.Stop() {
			select {
			case <-idleTimer.C:
			default:
			}
		}
		idleTimer.Reset(debounce)
	}

	loadFired := make(chan struct{}, 1)
	listenerCtx, stopListener := context.WithCancel(navCtx)
	defer stopListener()

	done := make(chan struct{})
	go func() {
		defer close(done)
		page.Context(listenerCtx).EachEvent(
			func(ev *proto.NetworkResponseReceived) {
				if !isScriptResponse(ev.Response.URL, ev.Response.MIMEType) {
					return
				}
				mu.Lock()
				pending[ev.RequestID] = pendingResponse{requestID: ev.RequestID, url: ev.Response.URL, mimeType: ev.Response.MIMEType}
				mu.Unlock()
				resetIdle()
			},
			func(ev *proto.NetworkLoadingFinished) {
				mu.Lock()
				pr, ok := pending[ev.RequestID]
				delete(pending, ev.RequestID)
				mu.Unlock()
				if !ok {
					return
				}
				body, err := fetchResponseBody(page, pr.requestID)
				if err != nil {
					// Transient per-script fetch error: skip, don't abort target (spec.md §7).
					return
				}
				origin := scan.OriginMainDocument
				if pr.url != target.URL {
					origin = scan.OriginRuntimeFetch
				}
				s := scan.NewCapturedScript(pr.url, body, pr.mimeType, origin, target.URL, 0)
				mu.Lock()
				scripts.Add(s)
				mu.Unlock()
				resetIdle()
			},
			func(ev *proto.PageLoadEventFired) {
				select {
				case loadFired <- struct{}{}:
				default:
				}
			},
		)()
	}()

	if err := page.Navigate(target.URL); err != nil {
		stopListener()
		<-done
		return nil, errors.Capture("capture.navigate", err)
	}

	loaded := false
settleLoop:
	for {
		select {
		case <-loadFired:
			loaded = true
		case <-idleTimer.C:
			if loaded {
				break settleLoop
			}
			resetIdle()
		case <-navCtx.Done():
			break settleLoop
		}
	}

	stopListener()
	<-done

	if html, err := page.HTML(); err == nil {
		for _, s := range InlineScripts(target.URL, html) {
			scripts.Add(s)
		}
	}

	return scripts, nil
}

func isScriptResponse(url, mimeType string) bool {
	mt := strings.ToLower(mimeType)
	if strings.Contains(mt, "javascript") || strings.Contains(mt, "ecmascript") {
		return true
	}
	lower := strings.ToLower(url)
	return strings.HasSuffix(lower, ".js") || strings.HasSuffix(lower, ".mjs")
}

func fetchResponseBody(page *rod.Page, requestID proto.NetworkRequestID) ([]byte, error) {
	result, err := proto.NetworkGetResponseBody{RequestID: requestID}.Call(page)
	if err != nil {
		return nil, fmt.Errorf("get response body: %w", err)
	}
	if result.Base64Encoded {
		return decodeBase64(result.Body)
	}
	return []byte(result.Body), nil
}
