package provider

import (
	"context"
)

// Gateway is the uniform call surface over an external reasoning provider.
// Implementations are stateless, perform no retries, and do not interpret the
// returned text. Timeouts are owned by the implementation; a timed-out call is
// reported as an ordinary error.
type Gateway interface {
	Name() string
	Call(ctx context.Context, prompt string) (string, error)
}

// Chain is an ordered list of gateways tried by priority. Gateways whose
// credentials are absent are dropped when the chain is assembled at startup,
// not per call.
type Chain []Gateway

// Names returns the gateway names in priority order.
func (c Chain) Names() []string {
	names := make([]string, 0, len(c))
	for _, gw := range c {
		names = append(names, gw.Name())
	}
	return names
}
