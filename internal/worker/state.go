package worker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/romanzzaa/plex-monitor/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot - неизменяемая копия состояния монитора
type Snapshot struct {
	Interval    time.Duration
	LastPrice   decimal.NullDecimal
	LastUpdated time.Time
	Active      bool
}

// State - общее состояние монитора.
// Чтение без блокировок (atomic snapshot), запись под мьютексом, copy-on-write.
type State struct {
	mu   sync.Mutex
	snap atomic.Pointer[Snapshot]
}

func NewState(interval time.Duration) (*State, error) {
	if err := validateInterval(interval); err != nil {
		return nil, err
	}
	s := &State{}
	s.snap.Store(&Snapshot{Interval: interval, Active: true})
	return s, nil
}

func (s *State) Read() Snapshot {
	return *s.snap.Load()
}

// SetInterval применяется со следующего цикла, текущее ожидание не прерывается.
func (s *State) SetInterval(d time.Duration) error {
	if err := validateInterval(d); err != nil {
		return err
	}
	s.update(func(next *Snapshot) { next.Interval = d })
	return nil
}

// RecordPrice вызывается только с успешно полученной ценой
func (s *State) RecordPrice(price decimal.Decimal, at time.Time) {
	s.update(func(next *Snapshot) {
		next.LastPrice = decimal.NullDecimal{Decimal: price, Valid: true}
		next.LastUpdated = at
	})
}

func (s *State) RequestStop() {
	s.update(func(next *Snapshot) { next.Active = false })
}

func (s *State) update(fn func(next *Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := *s.snap.Load()
	fn(&next)
	s.snap.Store(&next)
}

func validateInterval(d time.Duration) error {
	if d < domain.MinInterval {
		return fmt.Errorf("%w: requested %d seconds, minimum is %d seconds",
			domain.ErrInvalidInterval, int64(d/time.Second), int64(domain.MinInterval/time.Second))
	}
	return nil
}
