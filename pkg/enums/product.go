package enums

import "fmt"

// ProductUnit represents the measurement unit a listing is sold in.
type ProductUnit string

const (
	ProductUnitKg    ProductUnit = "kg"
	ProductUnitLiter ProductUnit = "L"
	ProductUnitPiece ProductUnit = "pcs"
)

var validProductUnits = []ProductUnit{
	ProductUnitKg,
	ProductUnitLiter,
	ProductUnitPiece,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the unit is one of the supported values.
func (u ProductUnit) IsValid() bool {
	for _, valid := range validProductUnits {
		if u == valid {
			return true
		}
	}
	return false
}

// ParseProductUnit validates raw input into a ProductUnit, defaulting to pcs
// when empty.
func ParseProductUnit(raw string) (ProductUnit, error) {
	if raw == "" {
		return ProductUnitPiece, nil
	}
	unit := ProductUnit(raw)
	if !unit.IsValid() {
		return "", fmt.Errorf("invalid product unit %q", raw)
	}
	return unit, nil
}
