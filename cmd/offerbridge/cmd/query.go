package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"offerbridge/internal/app"
	"offerbridge/internal/offer"
	"offerbridge/internal/search"
)

func newShowCmd() *cobra.Command {
	var withVault bool
	c := &cobra.Command{
		Use:   "show <project> <unit>",
		Short: "Print the stored state of one offer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := offer.Key{ProjectID: args[0], ContractUnitNumber: args[1]}
			return withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				view, err := svc.Show(ctx, key, withVault)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), view)
			})
		},
	}
	c.Flags().BoolVar(&withVault, "vault", false, "include the full PII record")
	return c
}

func newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link <phone>",
		Short: "List offers whose buyer phone matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				entries, err := svc.LinkByPhone(ctx, args[0])
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Fprintln(cmd.OutOrStdout(), e.Key)
				}
				return nil
			})
		},
	}
}

func newSearchCmd() *cobra.Command {
	var q search.Query
	c := &cobra.Command{
		Use:   "search <text>",
		Short: "Search offers by buyer, unit or agent",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q.Text = args[0]
			}
			return withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				return printJSON(cmd.OutOrStdout(), svc.Search(ctx, q))
			})
		},
	}
	c.Flags().StringVar(&q.ProjectID, "project", "", "limit to one project")
	c.Flags().IntVar(&q.Limit, "limit", 20, "maximum results")
	c.Flags().IntVar(&q.Offset, "offset", 0, "results to skip")
	return c
}

func newReindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex <project>",
		Short: "Push one project's index entries to Meilisearch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc *app.Service) error {
				n, err := svc.Reindex(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "indexed %d offers\n", n)
				return nil
			})
		},
	}
}
