package models

// User represents a registered account. MonthlyBudget is the spending goal
// the dashboard compares the current month against; zero means unset.
type User struct {
	Base
	Name          string    `gorm:"not null" json:"name"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	Password      string    `gorm:"not null" json:"-"`
	MonthlyBudget float64   `gorm:"not null;default:0" json:"monthlyBudget"`
	Expenses      []Expense `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
