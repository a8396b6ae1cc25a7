package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// --- Constants ---

const (
	Currency = "ISK"

	DefaultInterval = 900 * time.Second
	MinInterval     = 300 * time.Second // Не чаще раза в 5 минут
)

// LoopPhase - состояние цикла опроса (state machine)
type LoopPhase string

const (
	PhaseRunning  LoopPhase = "running"
	PhaseStopping LoopPhase = "stopping"
	PhaseStopped  LoopPhase = "stopped"
)

// --- Value Objects ---

// MarketQuery - что и где ищем (инструмент + регион)
type MarketQuery struct {
	RegionID int64
	TypeID   int64
}

// SellOrder - ордер на продажу из стакана
type SellOrder struct {
	OrderID      int64
	Price        decimal.Decimal
	LocationID   int64
	VolumeRemain int64
	Issued       time.Time
}

// PriceQuote - результат одного запроса цены (не сохраняется)
type PriceQuote struct {
	Price      decimal.Decimal
	Currency   string
	LocationID int64
	Location   string
	CapturedAt time.Time
	Source     string
}

// MonitorStatus - снимок состояния монитора
type MonitorStatus struct {
	Phase       LoopPhase
	Interval    time.Duration
	LastPrice   decimal.NullDecimal
	LastUpdated time.Time
}

func (s MonitorStatus) Running() bool {
	return s.Phase == PhaseRunning
}

// --- Interval change ---

type IntervalUnit string

const (
	UnitSeconds IntervalUnit = "seconds"
	UnitMinutes IntervalUnit = "minutes"
	UnitHours   IntervalUnit = "hours"
)

var unitSeconds = map[IntervalUnit]int64{
	UnitSeconds: 1,
	UnitMinutes: 60,
	UnitHours:   3600,
}

// IntervalChangeRequest - запрос на смену интервала. Пустой Unit означает секунды.
type IntervalChangeRequest struct {
	Value int64
	Unit  IntervalUnit
}

// Normalize переводит запрос в секунды. Нижняя граница (MinInterval) здесь не проверяется,
// это делает State.SetInterval.
func (r IntervalChangeRequest) Normalize() (time.Duration, error) {
	unit := r.Unit
	if unit == "" {
		unit = UnitSeconds
	}

	mult, ok := unitSeconds[unit]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q (use seconds, minutes or hours)", ErrBadRequest, r.Unit)
	}
	if r.Value <= 0 {
		return 0, fmt.Errorf("%w: interval must be a positive number", ErrBadRequest)
	}
	if r.Value > math.MaxInt64/int64(time.Second)/mult {
		return 0, fmt.Errorf("%w: interval is too large", ErrBadRequest)
	}

	return time.Duration(r.Value*mult) * time.Second, nil
}
