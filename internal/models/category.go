package models

// Category is the fixed set of expense categories.
type Category string

const (
	CategoryFood     Category = "Food"
	CategoryTravel   Category = "Travel"
	CategoryRent     Category = "Rent"
	CategoryShopping Category = "Shopping"
	CategoryOther    Category = "Other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryTravel,
	CategoryRent,
	CategoryShopping,
	CategoryOther,
}

// IsValid reports whether c is one of the known categories. Matching is case-sensitive.
func (c Category) IsValid() bool {
	switch c {
	case CategoryFood, CategoryTravel, CategoryRent, CategoryShopping, CategoryOther:
		return true
	}
	return false
}
