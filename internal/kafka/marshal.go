package kafka

import (
	"encoding/json"
	"fmt"

	"github.com/greenleaf/nursery-market/internal/market"
)

func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func DecodeEnvelope(b []byte) (market.Envelope, error) {
	var env market.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return market.Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
