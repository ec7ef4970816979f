// Package store provides in-memory Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/overtime-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	shifts   map[generic.EntityID]map[string]generic.StoredShift
	holidays []generic.Holiday
}

func NewMemory() *Memory {
	return &Memory{
		shifts: make(map[generic.EntityID]map[string]generic.StoredShift),
	}
}

var (
	_ generic.ShiftStore      = (*Memory)(nil)
	_ generic.HolidayCalendar = (*Memory)(nil)
)

// Put inserts or replaces the shift for its date.
func (m *Memory) Put(_ context.Context, s generic.StoredShift) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDate, ok := m.shifts[s.EntityID]
	if !ok {
		byDate = make(map[string]generic.StoredShift)
		m.shifts[s.EntityID] = byDate
	}
	byDate[s.Date.Key()] = s
	return nil
}

func (m *Memory) Get(_ context.Context, entityID generic.EntityID, date generic.TimePoint) (generic.StoredShift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.shifts[entityID][date.Key()]
	if !ok {
		return generic.StoredShift{}, generic.ErrNotFound
	}
	return s, nil
}

func (m *Memory) Range(_ context.Context, entityID generic.EntityID, from, to generic.TimePoint) ([]generic.StoredShift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	period := generic.Period{Start: from, End: to}
	var result []generic.StoredShift
	for _, s := range m.shifts[entityID] {
		if period.Contains(s.Date) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *Memory) Delete(_ context.Context, entityID generic.EntityID, date generic.TimePoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byDate := m.shifts[entityID]
	if _, ok := byDate[date.Key()]; !ok {
		return generic.ErrNotFound
	}
	delete(byDate, date.Key())
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (m *Memory) AddHoliday(h generic.Holiday) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays = append(m.holidays, h)
}

func (m *Memory) IsHoliday(companyID string, date generic.TimePoint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, h := range m.holidays {
		if h.CompanyID != "" && h.CompanyID != companyID {
			continue
		}
		if h.Recurring {
			if h.Date.Month() == date.Month() && h.Date.Day() == date.Day() {
				return true, nil
			}
			continue
		}
		if h.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) GetHolidays(companyID string, year int) ([]generic.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []generic.Holiday
	for _, h := range m.holidays {
		if h.CompanyID != "" && h.CompanyID != companyID {
			continue
		}
		if h.Recurring {
			h.Date = generic.NewTimePoint(year, h.Date.Month(), h.Date.Day())
		} else if h.Date.Year() != year {
			continue
		}
		result = append(result, h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}
