package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"emotion-panel/cli"
	"emotion-panel/panel"
)

var taxonomyCmd = &cobra.Command{
	Use:     "taxonomy",
	Aliases: []string{"emotions"},
	Short:   "Manage the emotion labels and their images",
}

var taxonomyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List labels in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			fmt.Fprint(cmd.OutOrStdout(), cli.Markdown(cli.TaxonomyTable(p.Taxonomy())))
			return nil
		})
	},
}

var taxonomyAddCmd = &cobra.Command{
	Use:   "add <label> [image-url]",
	Short: "Add a label, or change the image of an existing one",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := ""
		if len(args) == 2 {
			url = args[1]
		}
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			if _, err := p.AddLabel(ctx, args[0], url); err != nil {
				return err
			}
			if url == "" {
				logf("%q has no image yet; Neutral will be shown instead", args[0])
			}
			return nil
		})
	},
}

var taxonomyRemoveCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Remove a custom label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			_, err := p.RemoveLabel(ctx, args[0])
			return err
		})
	},
}

var taxonomyImageCmd = &cobra.Command{
	Use:   "image <label>",
	Short: "Print the image shown for a label",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			resolved, url, ok := p.ResolveImage(args[0])
			if !ok {
				return fmt.Errorf("no image for %q and none for Neutral", args[0])
			}
			if resolved != args[0] {
				logf("%q has no image; using %s", args[0], resolved)
			}
			fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		})
	},
}

func init() {
	taxonomyCmd.AddCommand(taxonomyListCmd)
	taxonomyCmd.AddCommand(taxonomyAddCmd)
	taxonomyCmd.AddCommand(taxonomyRemoveCmd)
	taxonomyCmd.AddCommand(taxonomyImageCmd)
	rootCmd.AddCommand(taxonomyCmd)
}
