package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/metrics"
	"github.com/szopper/go-szopper/transport"
)

func (c *cli) serveCmd() *cobra.Command {
	var noP2P bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept sync sessions from other devices until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(func(a *app) error {
				n, err := c.startNode(cmd.Context(), a, true, !noP2P)
				if err != nil {
					return err
				}
				defer n.Close()
				fmt.Fprintf(cmd.OutOrStdout(), "device %s accepting sync sessions on %s\n",
					a.deviceID, n.tcp.Addr())
				return n.serve(cmd.Context(), cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().BoolVar(&noP2P, "no-p2p", false, "accept sessions over plain tcp only")
	return cmd
}

// serve accepts sessions on every backend until ctx is canceled.
func (n *node) serve(ctx context.Context, w io.Writer) error {
	out := &syncWriter{w: w}
	eg, ctx := errgroup.WithContext(ctx)
	if addr := n.cli.cfg.MetricsListen; addr != "" {
		eg.Go(func() error {
			return metrics.Serve(ctx, n.logger, addr)
		})
	}
	if n.host != nil && n.cli.cfg.P2P.MDNS {
		// advertise the device for as long as it serves
		eg.Go(func() error {
			return n.host.MDNS().Run(ctx, func(types.PeerEndpoint) {})
		})
	}
	for _, backend := range n.backends {
		limiter := rate.NewLimiter(rate.Limit(n.cli.cfg.InboundRate), n.cli.cfg.InboundBurst)
		eg.Go(func() error {
			return n.acceptLoop(ctx, out, backend, limiter)
		})
	}
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (n *node) acceptLoop(ctx context.Context, out io.Writer, backend transport.Backend, limiter *rate.Limiter) error {
	logger := n.logger.With(zap.String("transport", string(backend.Kind())))
	s := n.syncer(backend)
	inbound := types.PeerEndpoint{
		ID:        "inbound",
		Transport: backend.Kind(),
	}
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if !s.Connect(ctx, inbound, true) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("failed to accept sync session", zap.Error(lastError(s)))
			continue
		}
		peer, _ := s.Peer()
		count, err := n.exchange(ctx, s)
		if err != nil {
			logger.Warn("sync failed", zap.Error(err))
		} else {
			logger.Info("synced with peer", zap.Int("items", count))
			fmt.Fprintf(out, "synced %d items with %s\n", count, displayName(peer))
		}
		s.Disconnect(ctx)
	}
}
