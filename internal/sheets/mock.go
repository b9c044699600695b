package sheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/Veraticus/kanso/internal/common"
	"github.com/Veraticus/kanso/internal/service"
)

// MockSource is a mock implementation of SheetSource for testing.
type MockSource struct {
	FetchFunc      func(ctx context.Context, sheet string) ([][]any, error)
	Values         map[string][][]any
	FetchCalls     []FetchCall
	FetchCallCount int
	mu             sync.Mutex
}

var _ service.SheetSource = (*MockSource)(nil)

// FetchCall represents a single call to FetchValues.
type FetchCall struct {
	Error error
	Sheet string
}

// NewMockSource creates a new mock sheet source.
func NewMockSource() *MockSource {
	return &MockSource{
		Values:     make(map[string][][]any),
		FetchCalls: make([]FetchCall, 0),
	}
}

// SetValues registers a canned raw cell grid for a worksheet name.
func (m *MockSource) SetValues(sheet string, values [][]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Values[sheet] = values
}

// FetchValues implements the SheetSource interface.
func (m *MockSource) FetchValues(ctx context.Context, sheet string) ([][]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCallCount++

	var values [][]any
	var err error
	if m.FetchFunc != nil {
		values, err = m.FetchFunc(ctx, sheet)
	} else if canned, ok := m.Values[sheet]; ok {
		values = canned
	} else {
		err = fmt.Errorf("%w: %s", common.ErrSheetNotFound, sheet)
	}

	m.FetchCalls = append(m.FetchCalls, FetchCall{
		Sheet: sheet,
		Error: err,
	})

	return values, err
}

// Reset clears all recorded calls.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchCallCount = 0
	m.FetchCalls = make([]FetchCall, 0)
}

// GetFetchCalls returns a copy of all fetch calls.
func (m *MockSource) GetFetchCalls() []FetchCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]FetchCall, len(m.FetchCalls))
	copy(calls, m.FetchCalls)
	return calls
}

// SetFetchError configures the mock to return an error on every fetch.
func (m *MockSource) SetFetchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FetchFunc = func(_ context.Context, _ string) ([][]any, error) {
		return nil, err
	}
}
