package core

import (
	"context"
	"time"
)

type TurnRepository interface {
	AddTurn(ctx context.Context, turn StoredTurn) error
	ListTurns(ctx context.Context, limit int) ([]StoredTurn, error)
}

// StoredTurn is one responder exchange kept in the turn log.
type StoredTurn struct {
	ID         int64     `json:"id"`
	Message    string    `json:"message"`
	Reply      string    `json:"reply"`
	HistoryLen int       `json:"history_len"`
	Provider   string    `json:"provider"`
	CreatedAt  time.Time `json:"created_at"`
}

type CarRepository interface {
	ListCars(ctx context.Context) ([]Car, error)
	SearchCars(ctx context.Context, criteria CarSearch) ([]Car, error)
}

// Car is one rental vehicle of the inventory.
type Car struct {
	ID           int64    `json:"id"`
	Make         string   `json:"make"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Category     string   `json:"category"`
	DailyPrice   float64  `json:"daily_price"`
	Passengers   int      `json:"passengers"`
	Luggage      int      `json:"luggage"`
	Transmission string   `json:"transmission"`
	FuelType     string   `json:"fuel_type"`
	Features     []string `json:"features"`
	ImageURL     string   `json:"image_url"`
	Available    bool     `json:"available"`
}

// CarSearch filters available cars. Zero values do not filter.
type CarSearch struct {
	MaxPrice      float64 `json:"max_price,omitempty"`
	MinPassengers int     `json:"min_passengers,omitempty"`
	Category      string  `json:"category,omitempty"`
	FuelType      string  `json:"fuel_type,omitempty"`
}
