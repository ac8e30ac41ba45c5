package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                sync.Mutex
	sessionsStarted   int
	matchesCompleted  int
	rotationDurations []float64
	clockStalls       int
	clockFallbacks    int
	snapshotSaves     int
	snapshotFailures  int
	archivePublished  int
	archiveFailed     int
	notifSent         int
	notifFailed       int
	startupTime       float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		rotationDurations: make([]float64, 0),
	}
}

func (m *Mock) IncSessionsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionsStarted++
}

func (m *Mock) IncMatchesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchesCompleted++
}

func (m *Mock) ObserveRotationDuration(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rotationDurations = append(m.rotationDurations, seconds)
}

func (m *Mock) IncClockStalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clockStalls++
}

func (m *Mock) IncClockFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clockFallbacks++
}

func (m *Mock) IncSnapshotSaves() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotSaves++
}

func (m *Mock) IncSnapshotFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshotFailures++
}

func (m *Mock) IncArchivePublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archivePublished++
}

func (m *Mock) IncArchiveFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.archiveFailed++
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifSent++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifFailed++
}

func (m *Mock) SetStartupTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = seconds
}

// SessionsStarted returns the number of times IncSessionsStarted was called.
func (m *Mock) SessionsStarted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionsStarted
}

// MatchesCompleted returns the number of times IncMatchesCompleted was called.
func (m *Mock) MatchesCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.matchesCompleted
}

// ClockStalls returns the number of times IncClockStalls was called.
func (m *Mock) ClockStalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clockStalls
}

// ClockFallbacks returns the number of times IncClockFallbacks was called.
func (m *Mock) ClockFallbacks() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clockFallbacks
}

// SnapshotSaves returns the number of times IncSnapshotSaves was called.
func (m *Mock) SnapshotSaves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotSaves
}

// ArchivePublished returns the number of times IncArchivePublished was called.
func (m *Mock) ArchivePublished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.archivePublished
}

// ArchiveFailed returns the number of times IncArchiveFailed was called.
func (m *Mock) ArchiveFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.archiveFailed
}

// NotifSent returns the number of times IncNotifSent was called.
func (m *Mock) NotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifSent
}

// NotifFailed returns the number of times IncNotifFailed was called.
func (m *Mock) NotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifFailed
}

// SnapshotFailures returns the number of times IncSnapshotFailures was called.
func (m *Mock) SnapshotFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotFailures
}
