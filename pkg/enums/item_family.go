package enums

import "fmt"

// ItemFamily maps to the item_family enum in Postgres. Each family is a
// separately replaced line-item collection for one event.
type ItemFamily string

const (
	FamilyBeverage  ItemFamily = "beverage"
	FamilySupply    ItemFamily = "supply"
	FamilyEquipment ItemFamily = "equipment"
)

var validItemFamilies = []ItemFamily{
	FamilyBeverage,
	FamilySupply,
	FamilyEquipment,
}

// IsValid reports whether the value matches the canonical item_family enum.
func (f ItemFamily) IsValid() bool {
	for _, candidate := range validItemFamilies {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseItemFamily converts raw input into ItemFamily.
func ParseItemFamily(value string) (ItemFamily, error) {
	for _, candidate := range validItemFamilies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item family %q", value)
}
