package pos

const (
	TopicReceiptRequested = "pos.receipt.requested"
)

// Partition key is the transaction id so every event of one sale stays ordered.
func PartitionKey(transactionID string) []byte { return []byte(transactionID) }
