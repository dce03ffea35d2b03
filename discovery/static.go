package discovery

import (
	"context"

	"github.com/szopper/go-szopper/common/types"
)

// StaticSource reports a fixed set of endpoints, typically entered by the user.
type StaticSource struct {
	endpoints []types.PeerEndpoint
}

// NewStatic creates a source reporting endpoints as MANUAL.
func NewStatic(endpoints ...types.PeerEndpoint) *StaticSource {
	return &StaticSource{endpoints: endpoints}
}

func (*StaticSource) Name() string { return "static" }

// Run reports every endpoint once and waits for ctx.
func (s *StaticSource) Run(ctx context.Context, emit func(types.PeerEndpoint)) error {
	for _, ep := range s.endpoints {
		ep.DiscoveryMethod = types.DiscoveryManual
		emit(ep)
	}
	<-ctx.Done()
	return nil
}
