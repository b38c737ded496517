package model

import "time"

// FlowType distinguishes money coming in from money going out.
// Shared by categories and transactions.
type FlowType string

const (
	FlowIncome  FlowType = "income"
	FlowExpense FlowType = "expense"
)

// IsValid checks if the flow type is known.
func (f FlowType) IsValid() bool {
	return f == FlowIncome || f == FlowExpense
}

// Category groups transactions of one flow type.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Type      FlowType  `json:"type"`
	Color     string    `json:"color"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultCategory describes a category seeded for new users.
type DefaultCategory struct {
	Name  string
	Type  FlowType
	Color string
	Icon  string
}

// DefaultCategories are created for every new user at registration.
var DefaultCategories = []DefaultCategory{
	{Name: "Salary", Type: FlowIncome, Color: "#22c55e", Icon: "briefcase"},
	{Name: "Freelance", Type: FlowIncome, Color: "#10b981", Icon: "laptop"},
	{Name: "Investments", Type: FlowIncome, Color: "#14b8a6", Icon: "trending-up"},
	{Name: "Other Income", Type: FlowIncome, Color: "#06b6d4", Icon: "plus-circle"},
	{Name: "Housing", Type: FlowExpense, Color: "#ef4444", Icon: "home"},
	{Name: "Food", Type: FlowExpense, Color: "#f97316", Icon: "utensils"},
	{Name: "Transportation", Type: FlowExpense, Color: "#f59e0b", Icon: "car"},
	{Name: "Utilities", Type: FlowExpense, Color: "#eab308", Icon: "zap"},
	{Name: "Healthcare", Type: FlowExpense, Color: "#ec4899", Icon: "heart"},
	{Name: "Entertainment", Type: FlowExpense, Color: "#a855f7", Icon: "film"},
	{Name: "Shopping", Type: FlowExpense, Color: "#8b5cf6", Icon: "shopping-bag"},
	{Name: "Education", Type: FlowExpense, Color: "#6366f1", Icon: "book"},
	{Name: "Other", Type: FlowExpense, Color: "#64748b", Icon: "more-horizontal"},
}
