package domain

// OperationKey identifies one of the fixed proxied operations.
type OperationKey string

const (
	OpRemember OperationKey = "remember"
	OpRecall   OperationKey = "recall"
	OpSearch   OperationKey = "search"
	OpForget   OperationKey = "forget"
	OpContext  OperationKey = "context"
	OpObserve  OperationKey = "observe"
	OpHealth   OperationKey = "health"
	OpStats    OperationKey = "stats"
)

// Operations lists every proxied operation in a stable order.
var Operations = []OperationKey{
	OpRemember,
	OpRecall,
	OpSearch,
	OpForget,
	OpContext,
	OpObserve,
	OpHealth,
	OpStats,
}

// Valid reports whether k is one of the known operations.
func (k OperationKey) Valid() bool {
	for _, op := range Operations {
		if k == op {
			return true
		}
	}
	return false
}

func (k OperationKey) String() string {
	return string(k)
}
