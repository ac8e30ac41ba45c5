package notifier

import (
	"sync"

	"github.com/peladaclub/rachao/internal/match"
	"github.com/peladaclub/rachao/internal/roster"
)

// MockNotifier is a mock implementation of the Notifier interface for
// testing. It is safe for concurrent use.
type MockNotifier struct {
	mu sync.Mutex

	// Spies for method calls
	SendSessionStartedFunc func(sessionKey string, teams []match.Team, bench []roster.Player, dryRun bool) error
	SendMatchResultFunc    func(m *match.Match, dryRun bool) error
	SendSessionReportFunc  func(r *match.SessionReport, dryRun bool) error

	// Call records
	SessionStartedCalls []string
	MatchResultCalls    []*match.Match
	SessionReportCalls  []*match.SessionReport
}

// NewMock creates a new mock notifier.
func NewMock() *MockNotifier {
	return &MockNotifier{}
}

// Reset clears all call records.
func (m *MockNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionStartedCalls = nil
	m.MatchResultCalls = nil
	m.SessionReportCalls = nil
}

func (m *MockNotifier) SendSessionStarted(sessionKey string, teams []match.Team, bench []roster.Player, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionStartedCalls = append(m.SessionStartedCalls, sessionKey)
	if m.SendSessionStartedFunc != nil {
		return m.SendSessionStartedFunc(sessionKey, teams, bench, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendMatchResult(mt *match.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchResultCalls = append(m.MatchResultCalls, mt)
	if m.SendMatchResultFunc != nil {
		return m.SendMatchResultFunc(mt, dryRun)
	}
	return nil
}

func (m *MockNotifier) SendSessionReport(r *match.SessionReport, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionReportCalls = append(m.SessionReportCalls, r)
	if m.SendSessionReportFunc != nil {
		return m.SendSessionReportFunc(r, dryRun)
	}
	return nil
}
