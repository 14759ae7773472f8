package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/txstack/go-tx-ledger/internal/awsx"
	"github.com/txstack/go-tx-ledger/internal/ledger"
)

const notifPrefix = "NOTIF#"

// DefaultPageLimit bounds ListByUser when the caller passes no limit.
const DefaultPageLimit int32 = 20

// Store reads and writes notification rows in the shared table.
type Store struct {
	client    awsx.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
	newID     func() string
}

// NewStore creates a notifications Store bound to the table.
func NewStore(client awsx.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
		newID:     func() string { return "ntf-" + uuid.NewString() },
	}
}

// ListByUser returns the user's notifications newest-first with the same
// paging contract as the transaction listing.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int32, startKey map[string]types.AttributeValue) ([]Notification, map[string]types.AttributeValue, error) {
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	input := &dyn.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: awsString("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: ledger.UserPartition(userID)},
			":prefix": &types.AttributeValueMemberS{Value: notifPrefix},
		},
		ScanIndexForward: awsBool(false),
		Limit:            &limit,
	}
	if len(startKey) > 0 {
		input.ExclusiveStartKey = startKey
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, nil, fmt.Errorf("query notifications: %w", err)
	}

	items := make([]Notification, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, nil, fmt.Errorf("unmarshal notifications: %w", err)
	}
	return items, out.LastEvaluatedKey, nil
}

// Insert writes a notification row. Used by the notifier worker; the API
// itself never writes notifications.
func (s *Store) Insert(ctx context.Context, userID, txID, message string) (*Notification, error) {
	createdAt := ledger.FormatTimestamp(s.nowFunc())
	n := Notification{
		EntityType: EntityNotification,
		NotifID:    s.newID(),
		UserID:     userID,
		TxID:       txID,
		Message:    message,
		CreatedAt:  createdAt,
	}
	n.PK = ledger.UserPartition(userID)
	n.SK = notifPrefix + createdAt + "#" + n.NotifID

	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	}); err != nil {
		return nil, fmt.Errorf("put notification: %w", err)
	}
	return &n, nil
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
