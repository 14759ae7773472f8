package ledger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/txstack/go-tx-ledger/internal/awsx"
)

// Default page sizes for the read access patterns.
const (
	DefaultUserPageLimit   int32 = 20
	DefaultGlobalPageLimit int32 = 10
)

// ErrNotFound indicates the requested transaction has no canonical record.
var ErrNotFound = errors.New("transaction not found")

// ErrDuplicateRequest indicates the idempotency key was already spent and
// the prior transaction could not be recovered.
var ErrDuplicateRequest = errors.New("duplicate request")

// Store implements the transaction access patterns over a single table.
type Store struct {
	client    awsx.DynamoDBAPI
	tableName string
	indexName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
	newID     func() string
}

// NewStore creates a Store. ttlWindow sizes the expiresAt attribute written
// on guard rows (e.g. 48h); the table's TTL setting makes it effective.
func NewStore(client awsx.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		indexName: GlobalIndexName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
		newID:     func() string { return "tx-" + uuid.NewString() },
	}
}

// Create writes the user-scoped record, the canonical lookup record and,
// when idempotencyKey is non-empty, a guard row conditioned on the key not
// existing, all in one TransactWriteItems call. Either every row lands or
// none do.
//
// When the guard condition fails, a prior call already claimed the key: a
// best-effort second read resolves the guard row to its transaction and
// returns it, so retries converge on the original result. If that read
// cannot resolve a transaction the conflict is surfaced as
// ErrDuplicateRequest. Every other error propagates unchanged.
func (s *Store) Create(ctx context.Context, userID string, in CreateInput, idempotencyKey string) (*Transaction, error) {
	txID := s.newID()
	now := s.nowFunc()
	createdAt := FormatTimestamp(now)

	currency := in.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	data := in.Data
	if data == nil {
		data = map[string]interface{}{}
	}

	// One Transaction value feeds both representations so they stay
	// identical apart from their keys. The lookup record alone gets the
	// GSI1 attributes; the sparse index then sees each transaction once.
	tx := Transaction{
		EntityType: EntityTransaction,
		TxID:       txID,
		UserID:     userID,
		Amount:     in.Amount,
		Currency:   currency,
		Status:     StatusPending,
		Data:       data,
		CreatedAt:  createdAt,
	}

	userRec := tx
	userRec.PK, userRec.SK = userRecordKey(userID, createdAt, txID)
	lookupRec := tx
	lookupRec.PK, lookupRec.SK = lookupRecordKey(txID)
	lookupRec.GSI1PK = globalPartition
	lookupRec.GSI1SK = createdAt

	userItem, err := attributevalue.MarshalMap(userRec)
	if err != nil {
		return nil, fmt.Errorf("marshal user record: %w", err)
	}
	lookupItem, err := attributevalue.MarshalMap(lookupRec)
	if err != nil {
		return nil, fmt.Errorf("marshal lookup record: %w", err)
	}

	writes := []types.TransactWriteItem{
		{Put: &types.Put{TableName: &s.tableName, Item: userItem}},
		{Put: &types.Put{TableName: &s.tableName, Item: lookupItem}},
	}

	if idempotencyKey != "" {
		guard := IdempotencyRecord{
			EntityType: EntityIdempotency,
			TxID:       txID,
			UserID:     userID,
			CreatedAt:  createdAt,
			ExpiresAt:  now.Add(s.ttlWindow).Unix(),
		}
		guard.PK, guard.SK = idempotencyRecordKey(idempotencyKey)

		guardItem, err := attributevalue.MarshalMap(guard)
		if err != nil {
			return nil, fmt.Errorf("marshal guard record: %w", err)
		}
		writes = append(writes, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           &s.tableName,
				Item:                guardItem,
				ConditionExpression: awsString("attribute_not_exists(pk)"),
			},
		})
	}

	_, err = s.client.TransactWriteItems(ctx, &dyn.TransactWriteItemsInput{
		TransactItems: writes,
	})
	if err != nil {
		if idempotencyKey != "" && isConditionalFailure(err) {
			existing, rerr := s.recoverExisting(ctx, idempotencyKey)
			if rerr == nil {
				return existing, nil
			}
			log.Printf("idempotency recovery failed for key=%s: %v", idempotencyKey, rerr)
			return nil, fmt.Errorf("%w: idempotency key already used: %v", ErrDuplicateRequest, err)
		}
		return nil, fmt.Errorf("transact write: %w", err)
	}

	return &lookupRec, nil
}

// GetByID fetches the canonical record. It performs no ownership check;
// the transport layer compares the requester against UserID.
func (s *Store) GetByID(ctx context.Context, txID string) (*Transaction, error) {
	pk, sk := lookupRecordKey(txID)
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       keyAttrs(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var tx Transaction
	if err := attributevalue.UnmarshalMap(out.Item, &tx); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}
	return &tx, nil
}

// ListByUser returns the user's transactions newest-first. startKey is the
// opaque continuation key from a previous page (nil for the first page);
// the returned lastKey is nil when the stream is exhausted.
func (s *Store) ListByUser(ctx context.Context, userID string, limit int32, startKey map[string]types.AttributeValue) ([]Transaction, map[string]types.AttributeValue, error) {
	if limit <= 0 {
		limit = DefaultUserPageLimit
	}

	input := &dyn.QueryInput{
		TableName:              &s.tableName,
		KeyConditionExpression: awsString("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: UserPartition(userID)},
			":prefix": &types.AttributeValueMemberS{Value: txPrefix},
		},
		ScanIndexForward: awsBool(false),
		Limit:            &limit,
	}
	if len(startKey) > 0 {
		input.ExclusiveStartKey = startKey
	}

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, nil, fmt.Errorf("query user transactions: %w", err)
	}

	items := make([]Transaction, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, nil, fmt.Errorf("unmarshal transactions: %w", err)
	}
	return items, out.LastEvaluatedKey, nil
}

// ListGlobalRecent returns the newest transactions system-wide via the
// GSI1 fixed partition. Single bounded page, no cursor.
func (s *Store) ListGlobalRecent(ctx context.Context, limit int32) ([]Transaction, error) {
	if limit <= 0 {
		limit = DefaultGlobalPageLimit
	}

	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              &s.indexName,
		KeyConditionExpression: awsString("GSI1PK = :globalPk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":globalPk": &types.AttributeValueMemberS{Value: globalPartition},
		},
		ScanIndexForward: awsBool(false),
		Limit:            &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query global transactions: %w", err)
	}

	items := make([]Transaction, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal transactions: %w", err)
	}
	return items, nil
}

// recoverExisting resolves a spent idempotency key to the transaction the
// winning call created. The guard row is written by a different call, so
// this read can legitimately miss; callers surface the conflict then.
func (s *Store) recoverExisting(ctx context.Context, idempotencyKey string) (*Transaction, error) {
	pk, sk := idempotencyRecordKey(idempotencyKey)
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       keyAttrs(pk, sk),
	})
	if err != nil {
		return nil, fmt.Errorf("get guard record: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, errors.New("guard record not found")
	}

	var rec IdempotencyRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal guard record: %w", err)
	}
	if rec.TxID == "" {
		return nil, errors.New("guard record has no transaction id")
	}
	return s.GetByID(ctx, rec.TxID)
}

// isConditionalFailure reports whether err is the guard's existence check
// failing, as opposed to any other transact-write error. A cancellation
// whose reasons never name ConditionalCheckFailed propagates unchanged.
func isConditionalFailure(err error) bool {
	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) {
		for _, reason := range tce.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
		return false
	}

	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}

func keyAttrs(pk, sk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: pk},
		"sk": &types.AttributeValueMemberS{Value: sk},
	}
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
