package s0_data

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wonny/aegis-scorer/internal/contracts"
)

// MemorySource is an in-memory BarSource for dry runs, fixtures and tests
type MemorySource struct {
	mu   sync.RWMutex
	bars map[string][]contracts.Bar
}

// NewMemorySource creates an empty source
func NewMemorySource() *MemorySource {
	return &MemorySource{bars: make(map[string][]contracts.Bar)}
}

// Put stores bars for a symbol as given. Ordering is not enforced here so that
// integrity failures can be reproduced downstream.
func (m *MemorySource) Put(symbol string, bars []contracts.Bar) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bars[symbol] = append([]contracts.Bar(nil), bars...)
}

// GetBarsAsOf implements contracts.BarSource
func (m *MemorySource) GetBarsAsOf(_ context.Context, symbol string, asOf time.Time, limit int) ([]contracts.Bar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []contracts.Bar
	for _, b := range m.bars[symbol] {
		if !b.Date.After(asOf) {
			out = append(out, b)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// GetBarsAfter implements contracts.BarSource
func (m *MemorySource) GetBarsAfter(_ context.Context, symbol string, after time.Time, limit int) ([]contracts.Bar, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []contracts.Bar
	for _, b := range m.bars[symbol] {
		if b.Date.After(after) {
			out = append(out, b)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// ListSymbols implements contracts.BarSource
func (m *MemorySource) ListSymbols(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbols := make([]string, 0, len(m.bars))
	for s := range m.bars {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols, nil
}
