package tools

import (
	"context"
	"encoding/json"
	"fmt"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/tuskchat/internal/core"
)

const (
	ToolCarInventory = "get_car_inventory"
	ToolSearchCars   = "search_cars"
)

var (
	carCategories = []string{
		"Economy", "Compact SUV", "Mid-Size SUV", "Full-Size SUV",
		"Luxury", "Minivan", "Electric", "Pickup Truck", "Sports",
	}
	fuelTypes = []string{"Gasoline", "Hybrid", "Electric"}
)

// RegisterCarTools exposes the rental inventory in repo to the model.
func RegisterCarTools(reg *Registry, repo core.CarRepository) error {
	inventory := mcpproto.NewTool(ToolCarInventory,
		mcpproto.WithDescription("Get the complete list of available rental cars with all details including make, model, price, capacity, and features"),
	)
	if err := reg.Register(inventory, func(ctx context.Context, _ mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
		cars, err := repo.ListCars(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list cars: %w", err)
		}
		return carsResult(cars)
	}); err != nil {
		return err
	}

	search := mcpproto.NewTool(ToolSearchCars,
		mcpproto.WithDescription("Search for cars that match specific criteria like budget, passenger count, category, or fuel type"),
		mcpproto.WithNumber("max_price",
			mcpproto.Description("Maximum daily price in dollars"),
			mcpproto.Min(0),
		),
		mcpproto.WithNumber("min_passengers",
			mcpproto.Description("Minimum number of passengers the car should accommodate"),
			mcpproto.Min(1),
		),
		mcpproto.WithString("category",
			mcpproto.Description("Car category"),
			mcpproto.Enum(carCategories...),
		),
		mcpproto.WithString("fuel_type",
			mcpproto.Description("Type of fuel"),
			mcpproto.Enum(fuelTypes...),
		),
	)
	return reg.Register(search, func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
		criteria := core.CarSearch{
			MaxPrice:      req.GetFloat("max_price", 0),
			MinPassengers: req.GetInt("min_passengers", 0),
			Category:      req.GetString("category", ""),
			FuelType:      req.GetString("fuel_type", ""),
		}
		cars, err := repo.SearchCars(ctx, criteria)
		if err != nil {
			return nil, fmt.Errorf("failed to search cars: %w", err)
		}
		return carsResult(cars)
	})
}

func carsResult(cars []core.Car) (*mcpproto.CallToolResult, error) {
	data, err := json.Marshal(cars)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cars: %w", err)
	}
	return mcpproto.NewToolResultText(string(data)), nil
}
