// Package intercept implements C5: glob-pattern request interception via
// the Fetch domain, dispatched in rule registration order on first match.
package intercept

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sync"

	"github.com/chromedp/cdproto/fetch"

	"github.com/browsion/browsion-core/internal/browsionerr"
	"github.com/browsion/browsion-core/internal/globmatch"
)

// Action selects what happens to a request matching a rule.
type Action string

const (
	ActionBlock Action = "block"
	ActionMock  Action = "mock"
)

// Rule is one registered block/mock entry, matched in registration order.
type Rule struct {
	Pattern     string `json:"pattern"`
	Action      Action `json:"action"`
	Status      int64  `json:"status,omitempty"`
	Body        string `json:"body,omitempty"`
	ContentType string `json:"content_type,omitempty"`
}

// transport is the minimal surface intercept needs from the CDP transport.
type transport interface {
	Send(ctx context.Context, method string, params any, sessionID string) (json.RawMessage, error)
}

// Manager owns the Fetch-domain enablement and rule set of each tab,
// keyed by the tab's CDP session id.
type Manager struct {
	tr transport

	mu      sync.Mutex
	enabled map[string]bool // sessionID -> Fetch domain enabled
	rules   map[string][]Rule
}

// New builds an interception manager bound to a transport.
func New(tr transport) *Manager {
	return &Manager{
		tr:      tr,
		enabled: make(map[string]bool),
		rules:   make(map[string][]Rule),
	}
}

// Block adds a block rule for sessionID, enabling the Fetch domain on
// first use for that session (idempotent thereafter).
func (m *Manager) Block(ctx context.Context, sessionID, pattern string) error {
	if err := m.ensureEnabled(ctx, sessionID); err != nil {
		return err
	}
	m.addRule(sessionID, Rule{Pattern: pattern, Action: ActionBlock})
	return nil
}

// Mock adds a mock rule for sessionID.
func (m *Manager) Mock(ctx context.Context, sessionID, pattern string, status int64, body, contentType string) error {
	if err := m.ensureEnabled(ctx, sessionID); err != nil {
		return err
	}
	m.addRule(sessionID, Rule{Pattern: pattern, Action: ActionMock, Status: status, Body: body, ContentType: contentType})
	return nil
}

// Clear disables the Fetch domain for sessionID and drops its rules.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.rules, sessionID)
	wasEnabled := m.enabled[sessionID]
	delete(m.enabled, sessionID)
	m.mu.Unlock()

	if !wasEnabled {
		return nil
	}
	_, err := m.tr.Send(ctx, "Fetch.disable", nil, sessionID)
	return err
}

// Rules returns the current rule set for sessionID, in registration order.
func (m *Manager) Rules(sessionID string) []Rule {
	m.mu.Lock()
	defer m.mu.Unlock()
	src := m.rules[sessionID]
	out := make([]Rule, len(src))
	copy(out, src)
	return out
}

func (m *Manager) ensureEnabled(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	already := m.enabled[sessionID]
	m.mu.Unlock()
	if already {
		return nil
	}
	if _, err := m.tr.Send(ctx, "Fetch.enable", fetch.Enable(), sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	m.enabled[sessionID] = true
	m.mu.Unlock()
	return nil
}

func (m *Manager) addRule(sessionID string, r Rule) {
	m.mu.Lock()
	m.rules[sessionID] = append(m.rules[sessionID], r)
	m.mu.Unlock()
}

// HandleRequestPaused is the Fetch.requestPaused event handler: it walks
// this session's rules in registration order, dispatching the first match
// and continuing unmatched requests unmodified.
func (m *Manager) HandleRequestPaused(ctx context.Context, sessionID string, ev fetch.EventRequestPaused) error {
	rules := m.Rules(sessionID)

	var requestURL string
	if ev.Request != nil {
		requestURL = ev.Request.URL
	}

	for _, rule := range rules {
		if !globmatch.Match(rule.Pattern, requestURL) {
			continue
		}
		switch rule.Action {
		case ActionBlock:
			params := fetch.FailRequest(ev.RequestID, fetch.ErrorReasonBlockedByClient)
			_, err := m.tr.Send(ctx, "Fetch.failRequest", params, sessionID)
			return err
		case ActionMock:
			params := fetch.FulfillRequest(ev.RequestID, rule.Status).
				WithBody(base64.StdEncoding.EncodeToString([]byte(rule.Body)))
			if rule.ContentType != "" {
				params = params.WithResponseHeaders([]*fetch.HeaderEntry{
					{Name: "content-type", Value: rule.ContentType},
				})
			}
			_, err := m.tr.Send(ctx, "Fetch.fulfillRequest", params, sessionID)
			return err
		default:
			return browsionerr.New(browsionerr.KindInvalidArgument, "unknown intercept action %q", rule.Action)
		}
	}

	_, err := m.tr.Send(ctx, "Fetch.continueRequest", fetch.ContinueRequest(ev.RequestID), sessionID)
	return err
}
