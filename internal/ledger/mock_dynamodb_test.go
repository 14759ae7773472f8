package ledger

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is a minimal single-table DynamoDB double. It understands the
// exact expressions the Store issues: composite pk/sk keys, begins_with
// queries, the GSI1 fixed-partition query, and conditional transact puts.
type mockDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue // "pk|sk" -> item
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func compositeKey(item map[string]types.AttributeValue) (string, error) {
	pk, ok := item["pk"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("item missing pk")
	}
	sk, ok := item["sk"].(*types.AttributeValueMemberS)
	if !ok {
		return "", errors.New("item missing sk")
	}
	return pk.Value + "|" + sk.Value, nil
}

func strAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func valString(attr types.AttributeValue) string {
	if v, ok := attr.(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, err := compositeKey(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := m.items[key]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key, err := compositeKey(params.Item)
	if err != nil {
		return nil, err
	}
	m.items[key] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []map[string]types.AttributeValue
	var sortAttr string

	if params.IndexName != nil {
		// GSI1 fixed-partition query.
		want := valString(params.ExpressionAttributeValues[":globalPk"])
		sortAttr = "GSI1SK"
		for _, item := range m.items {
			if strAttr(item, "GSI1PK") == want {
				matched = append(matched, item)
			}
		}
	} else {
		pkWant := valString(params.ExpressionAttributeValues[":pk"])
		prefix := valString(params.ExpressionAttributeValues[":prefix"])
		sortAttr = "sk"
		for _, item := range m.items {
			if strAttr(item, "pk") == pkWant && strings.HasPrefix(strAttr(item, "sk"), prefix) {
				matched = append(matched, item)
			}
		}
	}

	descending := params.ScanIndexForward != nil && !*params.ScanIndexForward
	sort.Slice(matched, func(i, j int) bool {
		a, b := strAttr(matched[i], sortAttr), strAttr(matched[j], sortAttr)
		if a == b {
			a, b = strAttr(matched[i], "sk"), strAttr(matched[j], "sk")
		}
		if descending {
			return a > b
		}
		return a < b
	})

	if len(params.ExclusiveStartKey) > 0 {
		startSK := strAttr(params.ExclusiveStartKey, sortAttr)
		var rest []map[string]types.AttributeValue
		for _, item := range matched {
			v := strAttr(item, sortAttr)
			if (descending && v < startSK) || (!descending && v > startSK) {
				rest = append(rest, item)
			}
		}
		matched = rest
	}

	out := &dyn.QueryOutput{}
	limit := len(matched)
	if params.Limit != nil && int(*params.Limit) < limit {
		limit = int(*params.Limit)
	}
	out.Items = matched[:limit]
	if limit < len(matched) && limit > 0 {
		last := matched[limit-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"pk":     &types.AttributeValueMemberS{Value: strAttr(last, "pk")},
			"sk":     &types.AttributeValueMemberS{Value: strAttr(last, "sk")},
			"GSI1SK": &types.AttributeValueMemberS{Value: strAttr(last, "GSI1SK")},
		}
	}
	return out, nil
}

func (m *mockDynamo) TransactWriteItems(ctx context.Context, params *dyn.TransactWriteItemsInput, optFns ...func(*dyn.Options)) (*dyn.TransactWriteItemsOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// First pass: evaluate conditions; any failure cancels the whole batch.
	for _, it := range params.TransactItems {
		p := it.Put
		if p == nil {
			continue
		}
		if p.ConditionExpression != nil && *p.ConditionExpression == "attribute_not_exists(pk)" {
			key, err := compositeKey(p.Item)
			if err != nil {
				return nil, err
			}
			if _, exists := m.items[key]; exists {
				code := "ConditionalCheckFailed"
				msg := "Transaction cancelled, please refer cancellation reasons for specific reasons"
				return nil, &types.TransactionCanceledException{
					Message: &msg,
					CancellationReasons: []types.CancellationReason{
						{Code: &code},
					},
				}
			}
		}
	}

	// Second pass: apply every put.
	for _, it := range params.TransactItems {
		if p := it.Put; p != nil {
			key, err := compositeKey(p.Item)
			if err != nil {
				return nil, err
			}
			m.items[key] = p.Item
		}
	}
	return &dyn.TransactWriteItemsOutput{}, nil
}
