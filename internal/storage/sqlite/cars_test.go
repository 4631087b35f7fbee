package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sandevgo/tuskchat/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCarsRepo(t *testing.T) *CarsRepo {
	t.Helper()
	db, err := NewDB(context.Background(), filepath.Join(t.TempDir(), "tusk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCarsRepo(db)
}

func TestCarsRepo_ListCars(t *testing.T) {
	repo := newTestCarsRepo(t)

	cars, err := repo.ListCars(context.Background())
	require.NoError(t, err)
	require.Len(t, cars, 19)

	cheapest := cars[0]
	assert.Equal(t, "Hyundai", cheapest.Make)
	assert.Equal(t, "Elantra", cheapest.Model)
	assert.Equal(t, 33.0, cheapest.DailyPrice)
	assert.Equal(t, []string{"Air Conditioning", "Bluetooth"}, cheapest.Features)
	assert.NotEmpty(t, cheapest.ImageURL)
	assert.True(t, cheapest.Available)
}

func TestCarsRepo_SearchCars(t *testing.T) {
	repo := newTestCarsRepo(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		criteria core.CarSearch
		check    func(t *testing.T, cars []core.Car)
	}{
		{
			name:     "max price",
			criteria: core.CarSearch{MaxPrice: 38},
			check: func(t *testing.T, cars []core.Car) {
				require.Len(t, cars, 3)
				for _, c := range cars {
					assert.LessOrEqual(t, c.DailyPrice, 38.0)
				}
			},
		},
		{
			name:     "passengers and fuel",
			criteria: core.CarSearch{MinPassengers: 7, FuelType: "hybrid"},
			check: func(t *testing.T, cars []core.Car) {
				require.Len(t, cars, 1)
				assert.Equal(t, "Pacifica", cars[0].Model)
			},
		},
		{
			name:     "category",
			criteria: core.CarSearch{Category: "Electric"},
			check: func(t *testing.T, cars []core.Car) {
				require.Len(t, cars, 2)
				assert.Equal(t, "Leaf", cars[0].Model)
				assert.Equal(t, "Model 3", cars[1].Model)
			},
		},
		{
			name:     "no match is an empty list",
			criteria: core.CarSearch{MaxPrice: 10},
			check: func(t *testing.T, cars []core.Car) {
				assert.NotNil(t, cars)
				assert.Empty(t, cars)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cars, err := repo.SearchCars(ctx, tt.criteria)
			require.NoError(t, err)
			tt.check(t, cars)
		})
	}
}

func TestCarsRepo_SkipsUnavailable(t *testing.T) {
	repo := newTestCarsRepo(t)
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx, `UPDATE cars SET available = 0 WHERE model = 'Leaf'`)
	require.NoError(t, err)

	cars, err := repo.SearchCars(ctx, core.CarSearch{Category: "Electric"})
	require.NoError(t, err)
	require.Len(t, cars, 1)
	assert.Equal(t, "Model 3", cars[0].Model)
}
