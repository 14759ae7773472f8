package validation

// CreateTransactionRequest is the payload for POST /transactions. Amount is
// required; currency defaults server-side; data is free-form.
type CreateTransactionRequest struct {
	Amount   float64                `json:"amount" validate:"required,gt=0"`
	Currency string                 `json:"currency,omitempty" validate:"omitempty,len=3"`
	Data     map[string]interface{} `json:"data,omitempty"`
}
