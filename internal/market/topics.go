package market

const (
	TopicReservationCreated = "nursery.reservation.created"
	TopicOrderCreated       = "nursery.order.created"
	TopicOrderStatus        = "nursery.order.status"
	TopicPlantUpdated       = "nursery.plant.updated"
)

// Partition key = record id, supaya semua event satu record tetap berurutan.
func PartitionKey(id string) []byte { return []byte(id) }
