// Package store provides booking.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/sebooking/booking-engine/booking"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	bookings map[string]booking.Booking
	seq      map[string]int // insertion order, breaks created_at ties
	next     int
}

func NewMemory() *Memory {
	return &Memory{
		bookings: make(map[string]booking.Booking),
		seq:      make(map[string]int),
	}
}

func (m *Memory) Insert(_ context.Context, b booking.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = b
	m.next++
	m.seq[b.ID] = m.next
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*booking.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *Memory) UpdatePayment(_ context.Context, id string, att booking.Attribution, status booking.PaymentStatus, updatedBy string, updatedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return booking.ErrNotFound
	}
	b.AgentCollected = att.Agent
	b.CenterCollected = att.Center
	b.AdminCollected = att.Admin
	b.PaymentStatus = status
	b.PaymentUpdatedBy = updatedBy
	b.PaymentUpdatedAt = updatedAt
	m.bookings[id] = b
	return nil
}

func (m *Memory) SetPaymentStatus(_ context.Context, id string, status booking.PaymentStatus, updatedBy string, updatedAt int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return booking.ErrNotFound
	}
	b.PaymentStatus = status
	b.PaymentUpdatedBy = updatedBy
	b.PaymentUpdatedAt = updatedAt
	m.bookings[id] = b
	return nil
}

func (m *Memory) MarkDone(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return booking.ErrNotFound
	}
	b.Status = booking.StatusDone
	m.bookings[id] = b
	return nil
}

func (m *Memory) FindByPhone(_ context.Context, phone string) ([]booking.Booking, error) {
	return m.collect(func(b booking.Booking) bool {
		return b.Mobile == booking.CanonicalPhone(phone)
	}, false), nil
}

func (m *Memory) FindByCenter(_ context.Context, centerID string) ([]booking.Booking, error) {
	key := booking.CanonicalID(centerID)
	return m.collect(func(b booking.Booking) bool {
		return booking.CanonicalID(b.CenterID) == key
	}, true), nil
}

func (m *Memory) FindByAgent(_ context.Context, agentName string) ([]booking.Booking, error) {
	return m.collect(func(b booking.Booking) bool {
		return b.BookedBy == agentName
	}, true), nil
}

func (m *Memory) List(_ context.Context) ([]booking.Booking, error) {
	return m.collect(func(booking.Booking) bool { return true }, true), nil
}

func (m *Memory) ListCreatedBetween(_ context.Context, start, end int64) ([]booking.Booking, error) {
	return m.collect(func(b booking.Booking) bool {
		return b.CreatedAt >= start && b.CreatedAt <= end
	}, false), nil
}

// collect returns matching bookings, newest-first when desc is set.
func (m *Memory) collect(match func(booking.Booking) bool, desc bool) []booking.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]booking.Booking, 0)
	for _, b := range m.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		less := a.CreatedAt < b.CreatedAt
		if a.CreatedAt == b.CreatedAt {
			less = m.seq[a.ID] < m.seq[b.ID]
		}
		if desc {
			return !less
		}
		return less
	})
	return out
}
