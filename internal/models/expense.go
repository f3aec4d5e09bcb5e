package models

import (
	"time"

	"github.com/google/uuid"
)

type ExpenseCategory string

const (
	CategoryFood           ExpenseCategory = "food"
	CategoryTravel         ExpenseCategory = "travel"
	CategoryBills          ExpenseCategory = "bills"
	CategoryEntertainment  ExpenseCategory = "entertainment"
	CategoryShopping       ExpenseCategory = "shopping"
	CategoryHealthcare     ExpenseCategory = "healthcare"
	CategoryEducation      ExpenseCategory = "education"
	CategoryTransportation ExpenseCategory = "transportation"
	CategoryUtilities      ExpenseCategory = "utilities"
	CategoryRent           ExpenseCategory = "rent"
	CategoryGroceries      ExpenseCategory = "groceries"
	CategoryClothing       ExpenseCategory = "clothing"
	CategoryFitness        ExpenseCategory = "fitness"
	CategorySubscriptions  ExpenseCategory = "subscriptions"
	CategoryOther          ExpenseCategory = "other"
)

// Categories is the closed set of valid expense categories.
var Categories = []ExpenseCategory{
	CategoryFood, CategoryTravel, CategoryBills, CategoryEntertainment,
	CategoryShopping, CategoryHealthcare, CategoryEducation, CategoryTransportation,
	CategoryUtilities, CategoryRent, CategoryGroceries, CategoryClothing,
	CategoryFitness, CategorySubscriptions, CategoryOther,
}

// ValidCategory reports whether c belongs to the closed category set.
func ValidCategory(c ExpenseCategory) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type Expense struct {
	ID         uuid.UUID       `db:"id"`
	UserID     uuid.UUID       `db:"user_id"`
	Name       string          `db:"name"`
	Amount     float64         `db:"amount"`
	Category   ExpenseCategory `db:"category"`
	Date       time.Time       `db:"date"`
	Notes      string          `db:"notes"`
	Attachment string          `db:"attachment"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}
