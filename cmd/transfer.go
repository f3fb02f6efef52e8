package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"emotion-panel/cli"
	"emotion-panel/panel"
)

var (
	exportFile string
	importFile string
	resetYes   bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent emotions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			entries, err := p.History(ctx)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.Markdown(cli.HistoryTable(entries)))
			return nil
		})
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all settings as JSON",
	Long: `Export all settings as JSON. The blob goes to --file when given,
otherwise to the clipboard; when no clipboard is available it is printed
so it can be copied by hand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			data, err := p.ExportJSON(ctx)
			if err != nil {
				return err
			}
			if exportFile != "" {
				if err := os.WriteFile(exportFile, data, 0600); err != nil {
					return err
				}
				logf("settings exported to %s", exportFile)
				return nil
			}
			copied, err := cli.CopyOrPrint(cli.SystemClipboard(), data, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if copied {
				logf("settings copied to the clipboard")
			} else {
				logf("clipboard unavailable; copy the JSON above")
			}
			return nil
		})
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of an export",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(panel.Schema())
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import settings exported earlier",
	Long: `Import settings exported earlier, replacing the current ones. The blob
is read from --file ("-" for stdin), or from the clipboard when no file is
given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := cli.ReadInput(cli.SystemClipboard(), importFile, cmd.InOrStdin())
		if err != nil {
			if errors.Is(err, cli.ErrClipboardUnavailable) {
				return fmt.Errorf("%w; use --file", err)
			}
			return err
		}
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			return p.Import(ctx, data)
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore factory settings, clearing history and characters",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return errors.New("this deletes every saved setting; pass --yes to confirm")
		}
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			return p.ResetAll(ctx)
		})
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "", "write the blob to this file")
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", `read the blob from this file ("-" for stdin)`)
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")

	exportCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(resetCmd)
}
