package esi

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderDTO - элемент ответа /markets/{region_id}/orders/
type OrderDTO struct {
	OrderID      int64           `json:"order_id"`
	TypeID       int64           `json:"type_id"`
	IsBuyOrder   bool            `json:"is_buy_order"`
	Price        decimal.Decimal `json:"price"`
	LocationID   int64           `json:"location_id"`
	VolumeRemain int64           `json:"volume_remain"`
	Issued       time.Time       `json:"issued"`
}

// StationDTO - ответ /universe/stations/{station_id}/
type StationDTO struct {
	StationID int64  `json:"station_id"`
	Name      string `json:"name"`
	SystemID  int64  `json:"system_id"`
}

// ErrorDTO - тело ошибки ESI
type ErrorDTO struct {
	Error string `json:"error"`
}
