// Package nop provides a publisher that needs no broker.
package nop

import (
	"context"

	interfaces "github.com/sheikh-saqib/payments-engine/internal/interfaces"
)

// Publisher discards every event. It is used when no broker is configured.
type Publisher struct{}

func (Publisher) Publish(context.Context, string, any) error { return nil }
func (Publisher) Close() error                               { return nil }

var _ interfaces.EventPublisher = Publisher{}
