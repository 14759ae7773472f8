package ledger

// Entity type tags discriminate rows that share the single table.
const (
	EntityTransaction = "TRANSACTION"
	EntityIdempotency = "IDEMPOTENCY"
)

// Transactions are created PENDING and never mutated by this service.
const StatusPending = "PENDING"

// DefaultCurrency applies when the caller omits one.
const DefaultCurrency = "ARS"

// Transaction is stored twice: once under the owner's partition (sorted by
// creation time) and once under its own id for direct lookup. Only the
// lookup copy carries the GSI1 attributes, so the global-recent index holds
// exactly one entry per transaction.
type Transaction struct {
	PK         string                 `dynamodbav:"pk" json:"-"`
	SK         string                 `dynamodbav:"sk" json:"-"`
	EntityType string                 `dynamodbav:"entityType" json:"-"`
	TxID       string                 `dynamodbav:"txId" json:"txId"`
	UserID     string                 `dynamodbav:"userId" json:"userId"`
	Amount     float64                `dynamodbav:"amount" json:"amount"`
	Currency   string                 `dynamodbav:"currency" json:"currency"`
	Status     string                 `dynamodbav:"status" json:"status"`
	Data       map[string]interface{} `dynamodbav:"data" json:"data"`
	CreatedAt  string                 `dynamodbav:"createdAt" json:"createdAt"`
	GSI1PK     string                 `dynamodbav:"GSI1PK,omitempty" json:"-"`
	GSI1SK     string                 `dynamodbav:"GSI1SK,omitempty" json:"-"`
}

// IdempotencyRecord is the guard row written alongside a transaction when
// the caller supplies an idempotency key. Its existence means the key was
// already spent; txId points at the transaction it resolved to.
type IdempotencyRecord struct {
	PK         string `dynamodbav:"pk"`
	SK         string `dynamodbav:"sk"`
	EntityType string `dynamodbav:"entityType"`
	TxID       string `dynamodbav:"txId"`
	UserID     string `dynamodbav:"userId"`
	CreatedAt  string `dynamodbav:"createdAt"`
	ExpiresAt  int64  `dynamodbav:"expiresAt"` // TTL epoch seconds
}

// CreateInput carries the caller-supplied transaction fields. Amount is
// validated upstream; Currency and Data are defaulted here when empty.
type CreateInput struct {
	Amount   float64
	Currency string
	Data     map[string]interface{}
}
