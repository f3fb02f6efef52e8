package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"emotion-panel/cli"
	"emotion-panel/panel"
)

var presetCmd = &cobra.Command{
	Use:     "preset",
	Aliases: []string{"character"},
	Short:   "Manage saved characters",
	Long: `Manage saved characters. A preset holds a character's labels, images,
API key, model, prompt and auto-analyze flag.

Examples:
  emotion-panel preset save
  emotion-panel preset save Bob
  emotion-panel preset load Alice
  emotion-panel preset delete Bob`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved characters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			list, err := p.Presets(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.Markdown(cli.PresetTable(list, p.Config().CharacterName)))
			return nil
		})
	},
}

var presetSaveCmd = &cobra.Command{
	Use:   "save [name]",
	Short: "Save the current settings as a character (default: current name)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			name := p.Config().CharacterName
			if len(args) == 1 {
				name = args[0]
			}
			_, err := p.SaveCurrentAsPreset(ctx, name)
			return err
		})
	},
}

var presetLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Switch to a saved character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			_, err := p.LoadPreset(ctx, args[0])
			return err
		})
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			orphaned, err := p.DeletePreset(ctx, args[0])
			if err != nil {
				return err
			}
			if orphaned {
				logf("%q is still the current character but no longer has a preset", args[0])
			}
			return nil
		})
	},
}

var presetSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Copy the current settings into the current character's preset",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			synced, err := p.SyncCurrentToPreset(ctx)
			if err != nil {
				return err
			}
			if !synced {
				logf("no preset named %q; use \"preset save\" first", p.Config().CharacterName)
			}
			return nil
		})
	},
}

func init() {
	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetLoadCmd)
	presetCmd.AddCommand(presetDeleteCmd)
	presetCmd.AddCommand(presetSyncCmd)
	rootCmd.AddCommand(presetCmd)
}
