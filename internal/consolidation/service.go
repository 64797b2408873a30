package consolidation

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/conviteapp/convite-backend/pkg/errors"
)

// UnassignedSupplier collects requirements whose ingredient has no metadata
// row or no supplier set.
const UnassignedSupplier = "unassigned"

// Service aggregates an event's recipe requirements into supplier orders.
type Service interface {
	Consolidate(ctx context.Context, eventID uuid.UUID) ([]SupplierOrder, error)
}

type service struct {
	repo Repository
}

// NewService builds a consolidation service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("consolidation repository required")
	}
	return &service{repo: repo}, nil
}

// Consolidate groups the event's scaled requirements by supplier and
// ingredient name, summing quantities and costing each group at the
// ingredient's single unit cost. Either fetch failing fails the whole
// aggregation; there is no partial result.
func (s *service) Consolidate(ctx context.Context, eventID uuid.UUID) ([]SupplierOrder, error) {
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id required")
	}

	requirements, err := s.repo.RequirementsByEvent(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load requirements")
	}
	if len(requirements) == 0 {
		return []SupplierOrder{}, nil
	}

	names := distinctNames(requirements)
	ingredients, err := s.repo.IngredientsByName(ctx, names)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingredients")
	}

	type groupKey struct {
		supplier string
		name     string
	}
	groups := map[groupKey]*ConsolidatedItem{}
	for _, req := range requirements {
		supplier := UnassignedSupplier
		unitCost := decimal.Zero
		unit := req.Unit
		waste := 0.0
		if meta, ok := ingredients[req.IngredientName]; ok {
			if meta.Supplier != "" {
				supplier = meta.Supplier
			}
			unitCost = decimal.NewFromFloat(meta.UnitCost)
			if meta.Unit != "" {
				unit = meta.Unit
			}
			waste = meta.WastePercentage
		}

		key := groupKey{supplier: supplier, name: req.IngredientName}
		item, ok := groups[key]
		if !ok {
			item = &ConsolidatedItem{
				IngredientName:  req.IngredientName,
				Supplier:        supplier,
				Unit:            unit,
				UnitCost:        unitCost,
				WastePercentage: waste,
			}
			groups[key] = item
		}
		item.TotalQuantity = item.TotalQuantity.Add(req.Quantity)
		item.TotalCost = item.TotalQuantity.Mul(item.UnitCost)
	}

	bySupplier := map[string][]ConsolidatedItem{}
	for key, item := range groups {
		bySupplier[key.supplier] = append(bySupplier[key.supplier], *item)
	}

	orders := make([]SupplierOrder, 0, len(bySupplier))
	for supplier, items := range bySupplier {
		sort.Slice(items, func(i, j int) bool {
			return items[i].IngredientName < items[j].IngredientName
		})
		total := decimal.Zero
		for _, item := range items {
			total = total.Add(item.TotalCost)
		}
		orders = append(orders, SupplierOrder{
			Supplier:          supplier,
			Items:             items,
			TotalSupplierCost: total,
		})
	}
	sort.Slice(orders, func(i, j int) bool {
		// Unassigned sinks to the end so named suppliers lead the report.
		if orders[i].Supplier == UnassignedSupplier {
			return false
		}
		if orders[j].Supplier == UnassignedSupplier {
			return true
		}
		return orders[i].Supplier < orders[j].Supplier
	})
	return orders, nil
}

func distinctNames(requirements []Requirement) []string {
	seen := map[string]bool{}
	names := make([]string, 0, len(requirements))
	for _, req := range requirements {
		if seen[req.IngredientName] {
			continue
		}
		seen[req.IngredientName] = true
		names = append(names, req.IngredientName)
	}
	return names
}
