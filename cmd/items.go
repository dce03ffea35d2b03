package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/szopper/go-szopper/common/types"
)

var (
	boughtColor = color.New(color.FgHiBlack, color.CrossedOut)
	indexColor  = color.New(color.FgCyan)
)

func printItems(w io.Writer, items []types.Item, verbose bool) {
	if len(items) == 0 {
		fmt.Fprintln(w, "the list is empty")
		return
	}
	for i, item := range items {
		mark := "[ ]"
		name := item.Name
		if item.Bought {
			mark = "[x]"
			name = boughtColor.Sprint(name)
		}
		fmt.Fprintf(w, "%s %s %s", indexColor.Sprintf("%3d", i+1), mark, name)
		if verbose {
			fmt.Fprintf(w, "  %s", item.ID)
		}
		fmt.Fprintln(w)
	}
}

// resolveItem finds an item by its 1-based position in the list or by id.
func (a *app) resolveItem(ctx context.Context, ref string) (types.Item, error) {
	items, err := a.store.ListAll(ctx)
	if err != nil {
		return types.Item{}, err
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(items) {
			return types.Item{}, fmt.Errorf("no item at position %d, the list has %d", n, len(items))
		}
		return items[n-1], nil
	}
	return a.store.Get(ctx, ref)
}

func (c *cli) listCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the shopping list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(func(a *app) error {
				items, err := a.store.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				printItems(cmd.OutOrStdout(), items, verbose)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print item ids")
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME...",
		Short: "Add an item to the end of the list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				item, err := a.store.Add(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %q\n", item.Name)
				return nil
			})
		},
	}
}

func (c *cli) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ITEM",
		Short: "Mark an item as bought or not bought",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				item, err := a.resolveItem(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				item, err = a.store.ToggleBought(cmd.Context(), item.ID)
				if err != nil {
					return err
				}
				state := "not bought"
				if item.Bought {
					state = "bought"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%q is %s\n", item.Name, state)
				return nil
			})
		},
	}
}

func (c *cli) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename ITEM NAME...",
		Short: "Rename an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				item, err := a.resolveItem(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = a.store.Rename(cmd.Context(), item.ID, strings.Join(args[1:], " "))
				return err
			})
		},
	}
}

func (c *cli) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove ITEM",
		Aliases: []string{"rm"},
		Short:   "Remove an item from the list",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				item, err := a.resolveItem(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.store.Delete(cmd.Context(), item.ID)
			})
		},
	}
}

func (c *cli) reorderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reorder ITEM...",
		Short: "Move the given items to the top of the list in the given order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				ids := make([]string, 0, len(args))
				for _, ref := range args {
					item, err := a.resolveItem(cmd.Context(), ref)
					if err != nil {
						return err
					}
					ids = append(ids, item.ID)
				}
				return a.store.Reorder(cmd.Context(), ids)
			})
		},
	}
}

func (c *cli) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Mark every item as not bought",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withApp(func(a *app) error {
				return a.store.ResetAll(cmd.Context())
			})
		},
	}
}
