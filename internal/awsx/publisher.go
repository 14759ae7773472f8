package awsx

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// TransactionEvent is the message published after a transaction commits.
// cmd/notifier consumes it and materializes a notification row.
type TransactionEvent struct {
	TxID     string  `json:"txId"`
	UserID   string  `json:"userId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Publisher wraps an SQS client and a queue URL.
type Publisher struct {
	SQS      SQSAPI
	QueueURL string
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
	}
}

// SendTransactionEvent publishes a transaction-created event. correlationID
// is attached as a message attribute when non-empty.
func (p *Publisher) SendTransactionEvent(ctx context.Context, ev TransactionEvent, correlationID string) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: awsString(string(body)),
	}

	attrs := map[string]sqstypes.MessageAttributeValue{
		"txId": {
			DataType:    awsString("String"),
			StringValue: awsString(ev.TxID),
		},
		"userId": {
			DataType:    awsString("String"),
			StringValue: awsString(ev.UserID),
		},
	}
	if correlationID != "" {
		attrs["correlationId"] = sqstypes.MessageAttributeValue{
			DataType:    awsString("String"),
			StringValue: awsString(correlationID),
		}
	}
	input.MessageAttributes = attrs

	if _, err := p.SQS.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// awsString helper
func awsString(s string) *string { return &s }
