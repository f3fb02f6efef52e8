package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"emotion-panel/cli"
	"emotion-panel/panel"
)

var (
	testAPIKey string
	testModel  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Classify text into one emotion of the current taxonomy",
	Long: `Classify text with the current character's settings and record the
result in the history. Text is read from stdin when no arguments are given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 || text == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			text = string(data)
		}

		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			res, err := cli.ExecuteWithSpinner("Analyzing emotion...", func() (panel.Result, error) {
				return p.Analyze(ctx, text)
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.Markdown(resultMarkdown(res)))
			return nil
		})
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a sample sentence to check the API key and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			res, _ := cli.ExecuteWithSpinner("Testing connection...", func() (panel.TestResult, error) {
				return p.TestConnection(ctx, testAPIKey, testModel), nil
			})
			if !res.Success {
				return fmt.Errorf("connection test failed: %s", res.Error)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connection OK. Sample classified as %s (raw answer %q).\n", res.Label, res.Raw)
			return nil
		})
	},
}

func resultMarkdown(res panel.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", res.Label)
	if res.Image != "" {
		fmt.Fprintf(&b, "Image: %s", res.Image)
		if res.ImageLabel != res.Label {
			fmt.Fprintf(&b, " (from %s)", res.ImageLabel)
		}
		b.WriteString("\n\n")
	}
	if res.Raw != "" && res.Raw != res.Label {
		fmt.Fprintf(&b, "Model answered: `%s`\n\n", res.Raw)
	}
	if res.Degraded {
		fmt.Fprintf(&b, "> Analysis failed, showing Neutral: %s\n\n", res.Error)
	}
	fmt.Fprintf(&b, "_Recorded at %s_\n", res.Timestamp)
	return b.String()
}

func init() {
	testCmd.Flags().StringVar(&testAPIKey, "api-key", "", "API key to test instead of the saved one")
	testCmd.Flags().StringVar(&testModel, "model", "", "model to test instead of the saved one")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(testCmd)
}
