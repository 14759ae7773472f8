package validation

import "testing"

func TestCreateTransactionRequest_Valid(t *testing.T) {
	v := New()

	req := CreateTransactionRequest{
		Amount:   25.50,
		Currency: "ARS",
		Data:     map[string]interface{}{"note": "test"},
	}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid, got error: %v", err)
	}
}

func TestCreateTransactionRequest_MissingAmount(t *testing.T) {
	v := New()

	req := CreateTransactionRequest{
		Currency: "ARS",
	}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for missing amount, got nil")
	}
}

func TestCreateTransactionRequest_NegativeAmount(t *testing.T) {
	v := New()

	req := CreateTransactionRequest{Amount: -5}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for negative amount, got nil")
	}
}

func TestCreateTransactionRequest_SubCentPrecision(t *testing.T) {
	v := New()

	req := CreateTransactionRequest{Amount: 10.005}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for sub-cent amount, got nil")
	}
}

func TestCreateTransactionRequest_BadCurrency(t *testing.T) {
	v := New()

	req := CreateTransactionRequest{Amount: 10, Currency: "PESOS"}

	if err := v.Struct(req); err == nil {
		t.Fatal("expected validation error for currency length, got nil")
	}
}

func TestCreateTransactionRequest_OptionalFieldsOmitted(t *testing.T) {
	v := New()

	req := CreateTransactionRequest{Amount: 10}

	if err := v.Struct(req); err != nil {
		t.Fatalf("expected valid with defaults, got error: %v", err)
	}
}
