package models

import (
	"time"
)

// LocationCheck - запись о том, что пользователь запросил алерты рядом с собой
type LocationCheck struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	RadiusKm   float64   `json:"radius_km"`
	AlertCount int       `json:"alert_count"`
	CheckedAt  time.Time `json:"checked_at"`
}

// HasAlerts сообщает, нашлись ли рядом актуальные алерты
func (c LocationCheck) HasAlerts() bool {
	return c.AlertCount > 0
}
