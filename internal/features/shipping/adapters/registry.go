package adapter

import (
	"order-hub/internal/features/shipping/domain"
	"order-hub/internal/features/shipping/ports"
)

// NewCarriers returns the mapper of every live carrier, keyed by id.
func NewCarriers(sender domain.Sender) map[domain.CarrierID]ports.Carrier {
	carriers := []ports.Carrier{
		NewGHNCarrier(),
		NewGHTKCarrier(sender),
		NewViettelPostCarrier(sender),
		NewJTExpressCarrier(sender),
	}

	byID := make(map[domain.CarrierID]ports.Carrier, len(carriers))
	for _, c := range carriers {
		byID[c.ID()] = c
	}
	return byID
}
