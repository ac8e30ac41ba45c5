package archive

import (
	"sync"

	"github.com/peladaclub/rachao/internal/match"
)

// MockArchive is a mock implementation of the Archive interface for
// testing. It is safe for concurrent use.
type MockArchive struct {
	mu sync.Mutex

	// Spies for method calls
	SaveMatchFunc  func(m *match.Match) error
	SaveReportFunc func(r *match.SessionReport) error

	// Call records
	SaveMatchCalls  []*match.Match
	SaveReportCalls []*match.SessionReport
}

// NewMock creates a new mock archive.
func NewMock() *MockArchive {
	return &MockArchive{}
}

// Reset clears all call records.
func (m *MockArchive) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveMatchCalls = nil
	m.SaveReportCalls = nil
}

func (m *MockArchive) SaveMatch(mt *match.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveMatchCalls = append(m.SaveMatchCalls, mt)
	if m.SaveMatchFunc != nil {
		return m.SaveMatchFunc(mt)
	}
	return nil
}

func (m *MockArchive) SaveReport(r *match.SessionReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveReportCalls = append(m.SaveReportCalls, r)
	if m.SaveReportFunc != nil {
		return m.SaveReportFunc(r)
	}
	return nil
}

func (m *MockArchive) Close() {}
