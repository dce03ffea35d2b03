package cmd

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/syncer"
)

var knownColor = color.New(color.FgGreen)

func (c *cli) discoverCmd() *cobra.Command {
	var (
		noP2P   bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "discover",
		Short: "List devices nearby",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("timeout") {
				c.cfg.Discovery.Timeout = timeout
			}
			return c.withApp(func(a *app) error {
				n, err := c.startNode(cmd.Context(), a, false, !noP2P)
				if err != nil {
					return err
				}
				defer n.Close()
				var last []types.PeerEndpoint
				for snapshot := range n.syncer().DiscoverPeers(cmd.Context()) {
					last = snapshot
				}
				printPeers(cmd.OutOrStdout(), last)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&noP2P, "no-p2p", false, "only report configured static peers")
	cmd.Flags().DurationVar(&timeout, "timeout", c.cfg.Discovery.Timeout, "duration of the discovery pass")
	return cmd
}

func displayName(p types.PeerEndpoint) string {
	return cmp.Or(p.DisplayName, p.ID)
}

func printPeers(w io.Writer, peers []types.PeerEndpoint) {
	if len(peers) == 0 {
		fmt.Fprintln(w, "no devices found")
		return
	}
	for _, p := range peers {
		name := displayName(p)
		if p.HasKnownApp {
			name = knownColor.Sprint(name)
		}
		fmt.Fprintf(w, "%-24s %-8s %-7s %s\n", name, p.DiscoveryMethod, p.Transport, p.ID)
	}
}

// findPeer runs discovery until a peer running the app or a manually
// entered peer shows up.
func findPeer(ctx context.Context, s *syncer.Syncer) (types.PeerEndpoint, bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		found types.PeerEndpoint
		ok    bool
	)
	for snapshot := range s.DiscoverPeers(ctx) {
		if ok {
			continue
		}
		for _, p := range snapshot {
			if p.IsAvailable && (p.HasKnownApp || p.DiscoveryMethod == types.DiscoveryManual) {
				found, ok = p, true
				cancel()
				break
			}
		}
	}
	return found, ok
}
