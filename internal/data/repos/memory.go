package repos

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// MemorySignalRepository is the in-memory SignalRepository used for dry runs,
// replay backtests and tests
type MemorySignalRepository struct {
	mu      sync.RWMutex
	signals map[string]contracts.Signal
}

// NewMemorySignalRepository creates an empty repository
func NewMemorySignalRepository() *MemorySignalRepository {
	return &MemorySignalRepository{signals: make(map[string]contracts.Signal)}
}

func rowKey(symbol string, date time.Time, strategy string) string {
	return symbol + "|" + contracts.DateKey(date) + "|" + strategy
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

// Save implements contracts.SignalRepository
func (m *MemorySignalRepository) Save(_ context.Context, signals []contracts.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range signals {
		m.signals[rowKey(s.Symbol, s.Date, s.Strategy)] = s
	}
	return nil
}

// GetByDate implements contracts.SignalRepository
func (m *MemorySignalRepository) GetByDate(_ context.Context, date time.Time, strategy string) ([]contracts.Signal, error) {
	out := m.filter(func(s contracts.Signal) bool {
		return contracts.DateKey(s.Date) == contracts.DateKey(date) && (strategy == "" || s.Strategy == strategy)
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out, nil
}

// GetRange implements contracts.SignalRepository
func (m *MemorySignalRepository) GetRange(_ context.Context, from, to time.Time, strategy string) ([]contracts.Signal, error) {
	out := m.filter(func(s contracts.Signal) bool {
		return inRange(s.Date, from, to) && (strategy == "" || s.Strategy == strategy)
	})
	sort.Slice(out, func(i, j int) bool {
		return rowKey(out[i].Symbol, out[i].Date, out[i].Strategy) < rowKey(out[j].Symbol, out[j].Date, out[j].Strategy)
	})
	return out, nil
}

// Len returns the number of stored signals
func (m *MemorySignalRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.signals)
}

func (m *MemorySignalRepository) filter(keep func(contracts.Signal) bool) []contracts.Signal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []contracts.Signal
	for _, s := range m.signals {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// MemoryOutcomeRepository is the in-memory OutcomeRepository
type MemoryOutcomeRepository struct {
	mu       sync.RWMutex
	outcomes map[string]contracts.TradeOutcome
}

// NewMemoryOutcomeRepository creates an empty repository
func NewMemoryOutcomeRepository() *MemoryOutcomeRepository {
	return &MemoryOutcomeRepository{outcomes: make(map[string]contracts.TradeOutcome)}
}

// Save implements contracts.OutcomeRepository
func (m *MemoryOutcomeRepository) Save(_ context.Context, outcomes []contracts.TradeOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range outcomes {
		m.outcomes[rowKey(o.Symbol, o.SetupDate, o.Strategy)] = o
	}
	return nil
}

// GetRange implements contracts.OutcomeRepository
func (m *MemoryOutcomeRepository) GetRange(_ context.Context, from, to time.Time, strategy string) ([]contracts.TradeOutcome, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []contracts.TradeOutcome
	for _, o := range m.outcomes {
		if inRange(o.SetupDate, from, to) && (strategy == "" || o.Strategy == strategy) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return rowKey(out[i].Symbol, out[i].SetupDate, out[i].Strategy) < rowKey(out[j].Symbol, out[j].SetupDate, out[j].Strategy)
	})
	return out, nil
}

var (
	_ contracts.SignalRepository  = (*MemorySignalRepository)(nil)
	_ contracts.OutcomeRepository = (*MemoryOutcomeRepository)(nil)
	_ contracts.SignalRepository  = (*SignalRepository)(nil)
	_ contracts.OutcomeRepository = (*OutcomeRepository)(nil)
)
