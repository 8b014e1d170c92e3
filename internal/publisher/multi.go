package publisher

import (
	"context"
	"errors"

	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/value-engine/pkg/models"
)

// Multi fans a valuation out to several publishers
// Every publisher is attempted; errors are joined.
type Multi struct {
	publishers []contracts.ValuationPublisher
}

// NewMulti creates a fan-out publisher
func NewMulti(publishers ...contracts.ValuationPublisher) *Multi {
	return &Multi{publishers: publishers}
}

// Publish implements ValuationPublisher
func (m *Multi) Publish(ctx context.Context, valuation models.Valuation) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, valuation); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements ValuationPublisher
func (m *Multi) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
