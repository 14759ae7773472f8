package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"github.com/txstack/go-tx-ledger/internal/awsx"
	"github.com/txstack/go-tx-ledger/internal/notifications"
)

// Processor turns transaction-created events into notification rows.
type Processor struct {
	store *notifications.Store
}

// NewProcessor creates a Processor writing to the given table.
func NewProcessor(client awsx.DynamoDBAPI, tableName string) *Processor {
	return &Processor{
		store: notifications.NewStore(client, tableName),
	}
}

// Handle receives an SQS batch event and processes each message. Returning
// an error makes the Lambda runtime retry; repeated failures land in the DLQ.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			log.Printf("notifier error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var ev awsx.TransactionEvent
	if err := json.Unmarshal([]byte(rec.Body), &ev); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if ev.TxID == "" || ev.UserID == "" {
		return fmt.Errorf("incomplete transaction event: %s", rec.Body)
	}

	message := fmt.Sprintf("Transaction %s for %.2f %s was created", ev.TxID, ev.Amount, ev.Currency)
	if _, err := p.store.Insert(ctx, ev.UserID, ev.TxID, message); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	log.Printf("[notifier] notified user=%s tx=%s", ev.UserID, ev.TxID)
	return nil
}
