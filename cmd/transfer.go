package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/szopper/go-szopper/common/types"
	"github.com/szopper/go-szopper/conflict"
	"github.com/szopper/go-szopper/listfile"
)

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Write the list to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				items, err := a.store.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				list := &listfile.List{
					DeviceID:   a.deviceID,
					ExportedAt: types.Millis(time.Now()),
					Items:      items,
				}
				if err := listfile.Write(c.fs, args[0], list); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d items to %s\n", len(items), args[0])
				return nil
			})
		},
	}
}

func (c *cli) importCmd() *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Merge a list exported by another device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := listfile.Read(c.fs, args[0])
			if err != nil {
				return err
			}
			return c.withApp(func(a *app) error {
				items := list.Items
				if !replace {
					local, err := a.store.ListAll(cmd.Context())
					if err != nil {
						return err
					}
					res := conflict.Resolve(local, list.Items, c.cfg.Sync.Strategy)
					a.logger.Info("merged imported list",
						zap.String("file", args[0]),
						zap.String("from", list.DeviceID),
						zap.Int("conflicts", res.Conflicts),
						zap.Stringer("strategy", c.cfg.Sync.Strategy),
					)
					items = res.Items
				}
				if err := a.store.ReplaceAll(cmd.Context(), items); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "the list has %d items\n", len(items))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "replace the local list instead of merging")
	return cmd
}
