package notifications

// EntityNotification tags notification rows in the shared table.
const EntityNotification = "NOTIFICATION"

// Notification lives under the owner's partition with a NOTIF# sort-key
// prefix, keeping it in the same reverse-chronological ordering scheme as
// the user's transactions.
type Notification struct {
	PK         string `dynamodbav:"pk" json:"-"`
	SK         string `dynamodbav:"sk" json:"-"`
	EntityType string `dynamodbav:"entityType" json:"-"`
	NotifID    string `dynamodbav:"notifId" json:"notifId"`
	UserID     string `dynamodbav:"userId" json:"userId"`
	TxID       string `dynamodbav:"txId,omitempty" json:"txId,omitempty"`
	Message    string `dynamodbav:"message" json:"message"`
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt"`
}
