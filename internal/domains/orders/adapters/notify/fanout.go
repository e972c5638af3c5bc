package notify

import (
	"context"
	"errors"

	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/domain"
	"github.com/Apurer/supplier-fulfillment/internal/domains/orders/ports"
)

// Fanout delivers each event to every sink and joins their errors.
type Fanout []ports.Notifier

func (f Fanout) Notify(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
