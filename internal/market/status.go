package market

type Status string

const (
	StatusCompleted Status = "completed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
)

var validNext = map[Status]map[Status]bool{
	StatusCompleted: {StatusShipped: true},
	StatusShipped:   {StatusDelivered: true},
	StatusDelivered: {},
}

// CanTransition reports whether from -> to follows the forward progression
// completed -> shipped -> delivered. Service.UpdateOrderStatus itself does
// not enforce this; gating stays in the calling layer.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
