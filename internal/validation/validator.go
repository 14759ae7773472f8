package validation

import (
	"fmt"
	"math"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// register struct-level validation for CreateTransactionRequest to
	// reject amounts with sub-cent precision before they reach storage.
	v.RegisterStructValidation(createTransactionStructValidation, CreateTransactionRequest{})

	return v
}

// createTransactionStructValidation verifies the amount is representable in cents.
func createTransactionStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(CreateTransactionRequest)

	cents := req.Amount * 100
	if math.Abs(cents-math.Round(cents)) > 1e-9 {
		sl.ReportError(req.Amount, "amount", "Amount", "amount_precision", fmt.Sprintf("amount %v has sub-cent precision", req.Amount))
	}
}
