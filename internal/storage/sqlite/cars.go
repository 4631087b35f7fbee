package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/sandevgo/tuskchat/pkg/log"
)

const carColumns = `id, make, model, year, category, daily_price, passengers, luggage, transmission, fuel_type, features, image_url, available`

// CarsRepo reads the rental inventory seeded by the migrations.
type CarsRepo struct {
	db *sql.DB
}

func NewCarsRepo(db *sql.DB) *CarsRepo {
	return &CarsRepo{db: db}
}

// ListCars returns every available car.
func (r *CarsRepo) ListCars(ctx context.Context) ([]core.Car, error) {
	return r.SearchCars(ctx, core.CarSearch{})
}

// SearchCars returns the available cars matching every set criterion,
// cheapest first.
func (r *CarsRepo) SearchCars(ctx context.Context, criteria core.CarSearch) ([]core.Car, error) {
	var (
		where = []string{"available = 1"}
		args  []any
	)
	if criteria.MaxPrice > 0 {
		where = append(where, "daily_price <= ?")
		args = append(args, criteria.MaxPrice)
	}
	if criteria.MinPassengers > 0 {
		where = append(where, "passengers >= ?")
		args = append(args, criteria.MinPassengers)
	}
	if criteria.Category != "" {
		where = append(where, "category = ? COLLATE NOCASE")
		args = append(args, criteria.Category)
	}
	if criteria.FuelType != "" {
		where = append(where, "fuel_type = ? COLLATE NOCASE")
		args = append(args, criteria.FuelType)
	}

	query := `SELECT ` + carColumns + ` FROM cars WHERE ` + strings.Join(where, " AND ") + ` ORDER BY daily_price, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars: %w", err)
	}
	defer rows.Close()

	cars := []core.Car{}
	for rows.Next() {
		var (
			c        core.Car
			features string
		)
		if err := rows.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.Category, &c.DailyPrice, &c.Passengers,
			&c.Luggage, &c.Transmission, &c.FuelType, &features, &c.ImageURL, &c.Available); err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		if err := json.Unmarshal([]byte(features), &c.Features); err != nil {
			return nil, fmt.Errorf("failed to decode features of car %d: %w", c.ID, err)
		}
		cars = append(cars, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().Int("count", len(cars)).Msg("loaded cars")
	return cars, nil
}
