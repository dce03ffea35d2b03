package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/syncerr"
	"github.com/szopper/go-szopper/transport/tcp"
)

var (
	errNoPeer = errors.New("no device to sync with was found")

	statusColor = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
)

func (c *cli) syncCmd() *cobra.Command {
	var (
		peer     string
		schedule string
		noP2P    bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the list with another device",
		Long: "Synchronize the list with the device at --peer, or with the first device " +
			"running szopper found nearby. With --schedule the sync repeats on a cron schedule " +
			"until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(func(a *app) error {
				n, err := c.startNode(cmd.Context(), a, false, !noP2P)
				if err != nil {
					return err
				}
				defer n.Close()
				once := func(ctx context.Context) error {
					return n.syncOnce(ctx, cmd.OutOrStdout(), peer)
				}
				if schedule == "" {
					return once(cmd.Context())
				}
				return n.syncScheduled(cmd.Context(), schedule, once)
			})
		},
	}
	cmd.Flags().StringVar(&peer, "peer", "", "address of the device, host[:port]")
	cmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule, e.g. \"*/15 * * * *\" or \"@hourly\"")
	cmd.Flags().BoolVar(&noP2P, "no-p2p", false, "use plain tcp only")
	return cmd
}

func (n *node) syncOnce(ctx context.Context, w io.Writer, addr string) error {
	out := &syncWriter{w: w}
	s := n.syncer()
	statuses, unsubscribe := s.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for status := range statuses {
			fmt.Fprintln(out, statusColor.Sprint(status))
		}
	}()
	defer func() {
		unsubscribe()
		<-done
	}()

	var (
		peer types.PeerEndpoint
		ok   bool
	)
	if addr != "" {
		peer, ok = tcp.ManualEndpoint(addr), true
	} else {
		peer, ok = findPeer(ctx, s)
	}
	if !ok {
		return errNoPeer
	}
	if !s.Connect(ctx, peer, false) {
		return userError(lastError(s))
	}
	defer s.Disconnect(context.WithoutCancel(ctx))
	count, err := n.exchange(ctx, s)
	if err != nil {
		return userError(err)
	}
	fmt.Fprintf(out, "synced %d items with %s\n", count, displayName(peer))
	return nil
}

// syncWriter serializes writes of concurrent reporters.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// userError adds the user facing message of classified failures.
func userError(err error) error {
	if serr, ok := syncerr.As(err); ok {
		return fmt.Errorf("%s: %w", errorColor.Sprint(serr.UserMessage()), err)
	}
	return err
}

func (n *node) syncScheduled(ctx context.Context, spec string, once func(context.Context) error) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		if err := once(ctx); err != nil {
			n.logger.Warn("scheduled sync failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	c.Start()
	n.logger.Info("scheduled sync", zap.String("schedule", spec))
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
