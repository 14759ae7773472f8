package ledger

import "time"

const (
	userPrefix        = "USER#"
	txPrefix          = "TX#"
	idempotencyPrefix = "IDE#"

	// metadataSK marks single-row entities (lookup and guard records).
	metadataSK = "METADATA"

	// GlobalIndexName and globalPartition back the system-wide recent view:
	// every transaction row carries GSI1PK=GLOBAL_TX and GSI1SK=createdAt.
	GlobalIndexName = "GSI1"
	globalPartition = "GLOBAL_TX"
)

// timestampLayout is fixed-width UTC with milliseconds, so the string sort
// order of sk and GSI1SK is the chronological order.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in the layout used for sort keys and createdAt.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// UserPartition returns the partition key shared by everything owned by a
// user (transactions here, notifications in the notifications package).
func UserPartition(userID string) string {
	return userPrefix + userID
}

// userRecordKey keys the user-scoped copy. Appending txId after the
// timestamp keeps same-instant entries collision-free.
func userRecordKey(userID, createdAt, txID string) (pk, sk string) {
	return UserPartition(userID), txPrefix + createdAt + "#" + txID
}

// lookupRecordKey keys the canonical copy, one row per transaction.
func lookupRecordKey(txID string) (pk, sk string) {
	return txPrefix + txID, metadataSK
}

// idempotencyRecordKey keys the guard row. The key is global, not scoped to
// the user, matching the wire format this service inherited; scoping it per
// user would be userPrefix+userID+"#"+token here and nowhere else.
func idempotencyRecordKey(token string) (pk, sk string) {
	return idempotencyPrefix + token, metadataSK
}
