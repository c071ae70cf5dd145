package models

// Shipment statuses as exposed to customers. The set is fixed; the
// transition table below is only enforced when strict mode is enabled.
const (
	StatusPending        = "Pending"
	StatusPickedUp       = "Picked Up"
	StatusInTransit      = "In Transit"
	StatusOutForDelivery = "Out for Delivery"
	StatusDelivered      = "Delivered"
	StatusFailed         = "Failed"
	StatusReturned       = "Returned"
)

var allStatuses = map[string]struct{}{
	StatusPending:        {},
	StatusPickedUp:       {},
	StatusInTransit:      {},
	StatusOutForDelivery: {},
	StatusDelivered:      {},
	StatusFailed:         {},
	StatusReturned:       {},
}

func ValidStatus(s string) bool {
	_, ok := allStatuses[s]
	return ok
}

// allowedNext is the intended forward lifecycle. Delivered, Failed and
// Returned are terminal.
var allowedNext = map[string][]string{
	StatusPending:        {StatusPickedUp, StatusFailed},
	StatusPickedUp:       {StatusInTransit, StatusFailed},
	StatusInTransit:      {StatusOutForDelivery, StatusFailed, StatusReturned},
	StatusOutForDelivery: {StatusDelivered, StatusFailed, StatusReturned},
	StatusDelivered:      {},
	StatusFailed:         {},
	StatusReturned:       {},
}

// CanTransition reports whether to may directly follow from in the
// strict lifecycle. Unknown statuses never transition.
func CanTransition(from, to string) bool {
	for _, n := range allowedNext[from] {
		if n == to {
			return true
		}
	}
	return false
}

func TerminalStatus(s string) bool {
	return len(allowedNext[s]) == 0 && ValidStatus(s)
}
