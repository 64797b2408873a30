// Package catalog holds the compiled-in per-item ratio table and the pure
// quantity derivation used by every recalculation.
package catalog

import "github.com/conviteapp/convite-backend/pkg/enums"

// Entry is one static item definition. RatioPerGuest is multiplied by the
// event's guest count, and additionally by the bar-service duration when
// ScalesWithDuration is set.
type Entry struct {
	Family             enums.ItemFamily `json:"family"`
	Category           string           `json:"category"`
	Name               string           `json:"name"`
	RatioPerGuest      float64          `json:"ratio_per_guest"`
	UnitPrice          float64          `json:"unit_price"`
	ScalesWithDuration bool             `json:"scales_with_duration"`
}

var entries = []Entry{
	// Beverages. Ratios are bottles (or kegs) per guest per service hour.
	{Family: enums.FamilyBeverage, Category: "Espumosos", Name: "Cava Brut", RatioPerGuest: 0.12, UnitPrice: 7.90, ScalesWithDuration: false},
	{Family: enums.FamilyBeverage, Category: "Vinos", Name: "Vino Tinto Crianza", RatioPerGuest: 0.18, UnitPrice: 6.50, ScalesWithDuration: false},
	{Family: enums.FamilyBeverage, Category: "Vinos", Name: "Vino Blanco Verdejo", RatioPerGuest: 0.15, UnitPrice: 5.80, ScalesWithDuration: false},
	{Family: enums.FamilyBeverage, Category: "Destilados", Name: "Ginebra Premium", RatioPerGuest: 0.035, UnitPrice: 12.18, ScalesWithDuration: true},
	{Family: enums.FamilyBeverage, Category: "Destilados", Name: "Ron Añejo", RatioPerGuest: 0.025, UnitPrice: 11.40, ScalesWithDuration: true},
	{Family: enums.FamilyBeverage, Category: "Destilados", Name: "Whisky", RatioPerGuest: 0.020, UnitPrice: 13.75, ScalesWithDuration: true},
	{Family: enums.FamilyBeverage, Category: "Refrescos", Name: "Refresco de Cola", RatioPerGuest: 0.25, UnitPrice: 0.65, ScalesWithDuration: true},
	{Family: enums.FamilyBeverage, Category: "Refrescos", Name: "Tónica", RatioPerGuest: 0.20, UnitPrice: 0.70, ScalesWithDuration: true},
	{Family: enums.FamilyBeverage, Category: "Refrescos", Name: "Agua Mineral", RatioPerGuest: 0.50, UnitPrice: 0.35, ScalesWithDuration: false},
	{Family: enums.FamilyBeverage, Category: "Cervezas", Name: "Cerveza Lager", RatioPerGuest: 0.45, UnitPrice: 0.82, ScalesWithDuration: true},
	{Family: enums.FamilyBeverage, Category: "Hielo", Name: "Bolsa de Hielo 5kg", RatioPerGuest: 0.08, UnitPrice: 1.90, ScalesWithDuration: true},

	// Tableware and consumables. One-shot per guest, independent of duration.
	{Family: enums.FamilySupply, Category: "Cristalería", Name: "Copa de Vino", RatioPerGuest: 1.2, UnitPrice: 0.45, ScalesWithDuration: false},
	{Family: enums.FamilySupply, Category: "Cristalería", Name: "Copa de Cava", RatioPerGuest: 1.0, UnitPrice: 0.48, ScalesWithDuration: false},
	{Family: enums.FamilySupply, Category: "Cristalería", Name: "Vaso de Combinado", RatioPerGuest: 0.8, UnitPrice: 0.40, ScalesWithDuration: true},
	{Family: enums.FamilySupply, Category: "Vajilla", Name: "Plato de Presentación", RatioPerGuest: 1.0, UnitPrice: 0.95, ScalesWithDuration: false},
	{Family: enums.FamilySupply, Category: "Vajilla", Name: "Plato de Postre", RatioPerGuest: 1.1, UnitPrice: 0.55, ScalesWithDuration: false},
	{Family: enums.FamilySupply, Category: "Mantelería", Name: "Servilleta de Tela", RatioPerGuest: 2.0, UnitPrice: 0.30, ScalesWithDuration: false},
	{Family: enums.FamilySupply, Category: "Desechables", Name: "Servilleta de Papel", RatioPerGuest: 3.0, UnitPrice: 0.02, ScalesWithDuration: true},

	// Equipment. Rented per block of guests.
	{Family: enums.FamilyEquipment, Category: "Mobiliario", Name: "Mesa Redonda 10pax", RatioPerGuest: 0.1, UnitPrice: 9.00, ScalesWithDuration: false},
	{Family: enums.FamilyEquipment, Category: "Mobiliario", Name: "Silla Plegable", RatioPerGuest: 1.05, UnitPrice: 1.20, ScalesWithDuration: false},
	{Family: enums.FamilyEquipment, Category: "Barra", Name: "Módulo de Barra", RatioPerGuest: 0.02, UnitPrice: 35.00, ScalesWithDuration: false},
}

// All returns every catalog entry.
func All() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// ByFamily returns the entries belonging to one item family.
func ByFamily(family enums.ItemFamily) []Entry {
	out := []Entry{}
	for _, entry := range entries {
		if entry.Family == family {
			out = append(out, entry)
		}
	}
	return out
}

// Lookup finds the entry keyed by (family, category, name).
func Lookup(family enums.ItemFamily, category, name string) (Entry, bool) {
	for _, entry := range entries {
		if entry.Family == family && entry.Category == category && entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}
