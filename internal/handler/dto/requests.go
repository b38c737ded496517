package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/organizai/organizai/internal/assistant"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/service"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileRequest updates the current user.
type ProfileRequest struct {
	Name string `json:"name"`
}

// AccountRequest creates or updates an account. Absent fields are left as is.
type AccountRequest struct {
	Name     *string            `json:"name"`
	Type     *model.AccountType `json:"type"`
	Balance  *decimal.Decimal   `json:"balance"`
	Currency *string            `json:"currency"`
	IsActive *bool              `json:"is_active"`
}

// Input converts the request.
func (r AccountRequest) Input() service.AccountInput {
	return service.AccountInput{
		Name:     r.Name,
		Type:     r.Type,
		Balance:  r.Balance,
		Currency: r.Currency,
		IsActive: r.IsActive,
	}
}

// CategoryRequest creates or updates a category.
type CategoryRequest struct {
	Name  *string         `json:"name"`
	Type  *model.FlowType `json:"type"`
	Color *string         `json:"color"`
	Icon  *string         `json:"icon"`
}

// Input converts the request.
func (r CategoryRequest) Input() service.CategoryInput {
	return service.CategoryInput{Name: r.Name, Type: r.Type, Color: r.Color, Icon: r.Icon}
}

// TransactionRequest creates or updates a transaction.
type TransactionRequest struct {
	AccountID     *string          `json:"account_id"`
	CategoryID    *string          `json:"category_id"`
	ClearCategory bool             `json:"clear_category"`
	Type          *model.FlowType  `json:"type"`
	Amount        *decimal.Decimal `json:"amount"`
	Description   *string          `json:"description"`
	Date          *Date            `json:"date"`
	Notes         *string          `json:"notes"`
}

// Input converts the request.
func (r TransactionRequest) Input() service.TransactionInput {
	return service.TransactionInput{
		AccountID:     r.AccountID,
		CategoryID:    r.CategoryID,
		ClearCategory: r.ClearCategory,
		Type:          r.Type,
		Amount:        r.Amount,
		Description:   r.Description,
		Date:          r.Date.Ptr(),
		Notes:         r.Notes,
	}
}

// TransactionListResponse is a page of transactions.
type TransactionListResponse struct {
	Data       []*model.Transaction `json:"data"`
	Pagination *Pagination          `json:"pagination"`
}

// ToTransactionListResponse converts a service page.
func ToTransactionListResponse(out *service.ListTransactionsOutput) *TransactionListResponse {
	data := out.Transactions
	if data == nil {
		data = []*model.Transaction{}
	}
	return &TransactionListResponse{
		Data:       data,
		Pagination: &Pagination{NextCursor: out.NextCursor, HasMore: out.HasMore},
	}
}

// BudgetRequest creates or updates a budget.
type BudgetRequest struct {
	CategoryID     *string             `json:"category_id"`
	Amount         *decimal.Decimal    `json:"amount"`
	Period         *model.BudgetPeriod `json:"period"`
	AlertThreshold *int                `json:"alert_threshold"`
}

// Input converts the request.
func (r BudgetRequest) Input() service.BudgetInput {
	return service.BudgetInput{
		CategoryID:     r.CategoryID,
		Amount:         r.Amount,
		Period:         r.Period,
		AlertThreshold: r.AlertThreshold,
	}
}

// GoalRequest creates or updates a goal.
type GoalRequest struct {
	Name          *string           `json:"name"`
	TargetAmount  *decimal.Decimal  `json:"target_amount"`
	CurrentAmount *decimal.Decimal  `json:"current_amount"`
	Deadline      *Date             `json:"deadline"`
	ClearDeadline bool              `json:"clear_deadline"`
	Category      *string           `json:"category"`
	Status        *model.GoalStatus `json:"status"`
}

// Input converts the request.
func (r GoalRequest) Input() service.GoalInput {
	return service.GoalInput{
		Name:          r.Name,
		TargetAmount:  r.TargetAmount,
		CurrentAmount: r.CurrentAmount,
		Deadline:      r.Deadline.Ptr(),
		ClearDeadline: r.ClearDeadline,
		Category:      r.Category,
		Status:        r.Status,
	}
}

// MovementRequest is a dated amount: a goal contribution or a debt payment.
type MovementRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Date   *Date           `json:"date"`
	Note   string          `json:"note"`
}

// Contribution converts the request.
func (r MovementRequest) Contribution() service.ContributionInput {
	return service.ContributionInput{Amount: r.Amount, Date: r.Date.Ptr(), Note: r.Note}
}

// Payment converts the request.
func (r MovementRequest) Payment() service.PaymentInput {
	return service.PaymentInput{Amount: r.Amount, Date: r.Date.Ptr(), Note: r.Note}
}

// DebtRequest creates or updates a debt.
type DebtRequest struct {
	Name           *string          `json:"name"`
	Type           *model.DebtType  `json:"type"`
	OriginalAmount *decimal.Decimal `json:"original_amount"`
	CurrentBalance *decimal.Decimal `json:"current_balance"`
	InterestRate   *decimal.Decimal `json:"interest_rate"`
	MinimumPayment *decimal.Decimal `json:"minimum_payment"`
	DueDay         *int             `json:"due_day"`
	ClearDueDay    bool             `json:"clear_due_day"`
}

// Input converts the request.
func (r DebtRequest) Input() service.DebtInput {
	return service.DebtInput{
		Name:           r.Name,
		Type:           r.Type,
		OriginalAmount: r.OriginalAmount,
		CurrentBalance: r.CurrentBalance,
		InterestRate:   r.InterestRate,
		MinimumPayment: r.MinimumPayment,
		DueDay:         r.DueDay,
		ClearDueDay:    r.ClearDueDay,
	}
}

// InvestmentRequest creates or updates an investment.
type InvestmentRequest struct {
	Name          *string               `json:"name"`
	Symbol        *string               `json:"symbol"`
	Type          *model.InvestmentType `json:"type"`
	Quantity      *decimal.Decimal      `json:"quantity"`
	PurchasePrice *decimal.Decimal      `json:"purchase_price"`
	CurrentPrice  *decimal.Decimal      `json:"current_price"`
	PurchaseDate  *Date                 `json:"purchase_date"`
}

// Input converts the request.
func (r InvestmentRequest) Input() service.InvestmentInput {
	return service.InvestmentInput{
		Name:          r.Name,
		Symbol:        r.Symbol,
		Type:          r.Type,
		Quantity:      r.Quantity,
		PurchasePrice: r.PurchasePrice,
		CurrentPrice:  r.CurrentPrice,
		PurchaseDate:  r.PurchaseDate.Ptr(),
	}
}

// ReturnRequest records an investment value snapshot.
type ReturnRequest struct {
	Date  *Date           `json:"date"`
	Value decimal.Decimal `json:"value"`
	Note  string          `json:"note"`
}

// Input converts the request.
func (r ReturnRequest) Input() service.ReturnInput {
	return service.ReturnInput{Date: r.Date.Ptr(), Value: r.Value, Note: r.Note}
}

// DividendRequest creates or updates a dividend.
type DividendRequest struct {
	InvestmentID    *string          `json:"investment_id"`
	ClearInvestment bool             `json:"clear_investment"`
	Symbol          *string          `json:"symbol"`
	Amount          *decimal.Decimal `json:"amount"`
	PaymentDate     *Date            `json:"payment_date"`
	Reinvested      *bool            `json:"reinvested"`
}

// Input converts the request.
func (r DividendRequest) Input() service.DividendInput {
	return service.DividendInput{
		InvestmentID:    r.InvestmentID,
		ClearInvestment: r.ClearInvestment,
		Symbol:          r.Symbol,
		Amount:          r.Amount,
		PaymentDate:     r.PaymentDate.Ptr(),
		Reinvested:      r.Reinvested,
	}
}

// RetirementRequest replaces the retirement plan.
type RetirementRequest struct {
	CurrentAge           int             `json:"current_age"`
	RetirementAge        int             `json:"retirement_age"`
	LifeExpectancy       int             `json:"life_expectancy"`
	CurrentSavings       decimal.Decimal `json:"current_savings"`
	MonthlyContribution  decimal.Decimal `json:"monthly_contribution"`
	ExpectedReturn       decimal.Decimal `json:"expected_return"`
	InflationRate        decimal.Decimal `json:"inflation_rate"`
	DesiredMonthlyIncome decimal.Decimal `json:"desired_monthly_income"`
}

// Input converts the request.
func (r RetirementRequest) Input() service.RetirementInput {
	return service.RetirementInput{
		CurrentAge:           r.CurrentAge,
		RetirementAge:        r.RetirementAge,
		LifeExpectancy:       r.LifeExpectancy,
		CurrentSavings:       r.CurrentSavings,
		MonthlyContribution:  r.MonthlyContribution,
		ExpectedReturn:       r.ExpectedReturn,
		InflationRate:        r.InflationRate,
		DesiredMonthlyIncome: r.DesiredMonthlyIncome,
	}
}

// RuleRequest creates or updates a categorization rule.
type RuleRequest struct {
	Name       *string          `json:"name"`
	Keywords   []string         `json:"keywords"`
	MatchType  *model.MatchType `json:"match_type"`
	CategoryID *string          `json:"category_id"`
	Priority   *int             `json:"priority"`
	Active     *bool            `json:"active"`
}

// Input converts the request.
func (r RuleRequest) Input() service.RuleInput {
	return service.RuleInput{
		Name:       r.Name,
		Keywords:   r.Keywords,
		MatchType:  r.MatchType,
		CategoryID: r.CategoryID,
		Priority:   r.Priority,
		Active:     r.Active,
	}
}

// RuleTestRequest asks which rule matches a description.
type RuleTestRequest struct {
	Description string `json:"description"`
}

// RuleTestResponse reports the matching rule, if any.
type RuleTestResponse struct {
	Matched bool                      `json:"matched"`
	Rule    *model.CategorizationRule `json:"rule,omitempty"`
}

// TicketRequest opens a support ticket.
type TicketRequest struct {
	Subject  string               `json:"subject"`
	Message  string               `json:"message"`
	Priority model.TicketPriority `json:"priority"`
}

// Input converts the request.
func (r TicketRequest) Input() service.TicketInput {
	return service.TicketInput{Subject: r.Subject, Message: r.Message, Priority: r.Priority}
}

// TicketResponseRequest is an admin reply to a ticket.
type TicketResponseRequest struct {
	Response string             `json:"response"`
	Status   model.TicketStatus `json:"status"`
}

// BanRequest bans a user.
type BanRequest struct {
	UserID    string `json:"user_id"`
	Reason    string `json:"reason"`
	ExpiresAt *Date  `json:"expires_at"`
}

// Input converts the request.
func (r BanRequest) Input() service.BanInput {
	return service.BanInput{UserID: r.UserID, Reason: r.Reason, ExpiresAt: r.ExpiresAt.Ptr()}
}

// SettingRequest stores a provider key.
type SettingRequest struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

// ChatRequest is a conversation for the assistant.
type ChatRequest struct {
	Messages []assistant.Message `json:"messages"`
}

// SearchRequest is a web search.
type SearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

// CheckoutResponse carries the Stripe Checkout URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// CountResponse carries a count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// ToAuthResponse converts a service result.
func ToAuthResponse(res *service.AuthResult) *AuthResponse {
	return &AuthResponse{User: res.User, Token: res.Token, ExpiresAt: res.ExpiresAt}
}
