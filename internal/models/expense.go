package models

import "time"

// MinExpenseAmount is the smallest amount an expense may record.
const MinExpenseAmount = 1

// Expense is a single spending record owned by one user.
// ExpenseDate is a calendar date stored as midnight UTC.
type Expense struct {
	Base
	UserID      string    `gorm:"type:uuid;not null;index" json:"userId"`
	Title       string    `gorm:"not null" json:"title"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Category    Category  `gorm:"not null;index" json:"category"`
	ExpenseDate time.Time `gorm:"not null;index" json:"expenseDate"`
}
