package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/txstack/go-tx-ledger/internal/awsx"
)

// mockDynamo records puts; the notifier only writes.
type mockDynamo struct {
	puts []map[string]types.AttributeValue
}

func (m *mockDynamo) PutItem(ctx context.Context, in *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.puts = append(m.puts, in.Item)
	return &dyn.PutItemOutput{}, nil
}
func (m *mockDynamo) GetItem(ctx context.Context, in *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	return &dyn.GetItemOutput{}, nil
}
func (m *mockDynamo) Query(ctx context.Context, in *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	return &dyn.QueryOutput{}, nil
}
func (m *mockDynamo) TransactWriteItems(ctx context.Context, in *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	return nil, errors.New("not supported")
}

func sqsEvent(t *testing.T, ev awsx.TransactionEvent) events.SQSEvent {
	t.Helper()
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return events.SQSEvent{Records: []events.SQSMessage{{Body: string(body)}}}
}

func TestProcessor_WritesNotification(t *testing.T) {
	mock := &mockDynamo{}
	p := NewProcessor(mock, "app-table")

	ev := awsx.TransactionEvent{TxID: "tx-1", UserID: "u1", Amount: 10.5, Currency: "ARS"}
	if err := p.Handle(context.Background(), sqsEvent(t, ev)); err != nil {
		t.Fatalf("Handle error: %v", err)
	}

	if len(mock.puts) != 1 {
		t.Fatalf("expected 1 put, got %d", len(mock.puts))
	}
	item := mock.puts[0]
	if pk, _ := item["pk"].(*types.AttributeValueMemberS); pk == nil || pk.Value != "USER#u1" {
		t.Fatalf("unexpected pk: %+v", item["pk"])
	}
	if sk, _ := item["sk"].(*types.AttributeValueMemberS); sk == nil || !strings.HasPrefix(sk.Value, "NOTIF#") {
		t.Fatalf("unexpected sk: %+v", item["sk"])
	}
	if msg, _ := item["message"].(*types.AttributeValueMemberS); msg == nil || !strings.Contains(msg.Value, "tx-1") {
		t.Fatalf("unexpected message: %+v", item["message"])
	}
}

func TestProcessor_RejectsMalformedBody(t *testing.T) {
	p := NewProcessor(&mockDynamo{}, "app-table")
	ev := events.SQSEvent{Records: []events.SQSMessage{{Body: "{not json"}}}
	if err := p.Handle(context.Background(), ev); err == nil {
		t.Fatal("expected error for malformed body")
	}
}

func TestProcessor_RejectsIncompleteEvent(t *testing.T) {
	p := NewProcessor(&mockDynamo{}, "app-table")
	if err := p.Handle(context.Background(), sqsEvent(t, awsx.TransactionEvent{TxID: "tx-1"})); err == nil {
		t.Fatal("expected error for event without userId")
	}
}
