package model

// MoneyRequest is the DTO for fund additions and spend records.
// Amount is a decimal string in major units, e.g. "50.00".
type MoneyRequest struct {
	Amount   string `json:"amount" validate:"required,notblank,max=32"`
	Currency string `json:"currency" validate:"omitempty,currency"`
}

// TransitionRequest is the DTO for explicit status changes.
type TransitionRequest struct {
	Status string `json:"status" validate:"required,notblank,max=32"`
}
