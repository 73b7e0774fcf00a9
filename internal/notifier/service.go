// Package notifier consumes domain events and appends notifications to the
// affected customer records.
package notifier

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/greenleaf/nursery-market/internal/kafka"
	"github.com/greenleaf/nursery-market/internal/market"
	"github.com/greenleaf/nursery-market/internal/storage"
)

type Service struct {
	Market *market.Service
	Redis  *redis.Client // dedup; nil disables
	Name   string
}

// Handle dipasang sebagai handler consumer untuk topik plant.updated dan
// order.status.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	env, err := kafkax.DecodeEnvelope(m.Value)
	if err != nil {
		return err
	}

	// dedup via redis pakai event_id
	if s.Redis != nil {
		dkey := fmt.Sprintf(storage.KeyDedup, s.Name, env.EventID)
		fresh, err := s.Redis.SetNX(ctx, dkey, "1", storage.TTLDedup).Result()
		if err == nil && !fresh {
			return nil
		}
	}

	switch env.EventType {
	case market.EventPlantUpdated:
		p, err := market.UnwrapPayload[market.PlantUpdatedPayload](env.Payload)
		if err != nil {
			return err
		}
		n, err := s.Market.NotifySavedCustomers(ctx, p)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Info().Int("customers", n).Str("plant", p.PlantID).Msg("notifier: plant update fanned out")
		}
		return nil

	case market.EventOrderStatusChanged:
		p, err := market.UnwrapPayload[market.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		_, err = s.Market.NotifyOrderStatus(ctx, p)
		return err

	default:
		return nil // ignore
	}
}
