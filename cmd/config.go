package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"emotion-panel/cli"
	"emotion-panel/panel"
	"emotion-panel/settings"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the current character's settings",
	Long: `Show or change the current character's settings.

Examples:
  emotion-panel config show
  emotion-panel config set characterName Alice
  emotion-panel config set apiKey AIza...
  emotion-panel config set autoAnalyze true
  emotion-panel config settings`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			fmt.Fprint(cmd.OutOrStdout(), cli.Markdown(configMarkdown(p.Config())))
			return nil
		})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set one configuration field and save",
	Long: `Set one configuration field and save. Fields: characterName, apiKey,
modelName, promptTemplate, autoAnalyze.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPanel(cmd, func(ctx context.Context, p *panel.Panel) error {
			cfg := p.Config()
			if err := setConfigField(&cfg, args[0], args[1]); err != nil {
				return err
			}
			report, err := p.SaveConfig(ctx, cfg)
			if err != nil {
				return err
			}
			if report.PresetSynced {
				logf("preset %q updated", report.Config.CharacterName)
			}
			return nil
		})
	},
}

var configSettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show process settings (listen address, store, endpoints)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), cli.Markdown(settingsMarkdown(s)))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings file with the default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = settings.DefaultPath()
		}
		s, err := loadSettings(viper.GetViper())
		if err != nil {
			return err
		}
		if err := s.Save(path); err != nil {
			return fmt.Errorf("write settings: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", path)
		return nil
	},
}

// setConfigField assigns value to the configuration field named field.
func setConfigField(cfg *panel.Config, field, value string) error {
	switch strings.ToLower(field) {
	case "charactername", "character":
		cfg.CharacterName = value
	case "apikey", "api-key":
		cfg.APIKey = value
	case "modelname", "model":
		cfg.ModelName = value
	case "prompttemplate", "prompt":
		cfg.PromptTemplate = value
	case "autoanalyze", "auto-analyze":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("autoAnalyze must be true or false, got %q", value)
		}
		cfg.AutoAnalyze = b
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

func configMarkdown(cfg panel.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cfg.CharacterName)
	fmt.Fprintf(&b, "- **API key:** %s\n", cli.MaskKey(cfg.APIKey))
	fmt.Fprintf(&b, "- **Model:** %s\n", cfg.ModelName)
	fmt.Fprintf(&b, "- **Auto-analyze:** %t\n\n", cfg.AutoAnalyze)
	b.WriteString("## Prompt\n\n```\n" + cfg.PromptTemplate + "\n```\n\n")
	b.WriteString("## Emotions\n\n")
	b.WriteString(cli.TaxonomyTable(cfg.Taxonomy))
	return b.String()
}

func settingsMarkdown(s *settings.Settings) string {
	var b strings.Builder
	b.WriteString("# Settings\n\n")
	fmt.Fprintf(&b, "- **Listen:** %s\n", s.Server.Addr)
	fmt.Fprintf(&b, "- **Store:** %s\n", s.Store.Backend)
	switch s.Store.Backend {
	case "postgres":
		b.WriteString("- **DSN:** _set_\n")
	case "redis":
		fmt.Fprintf(&b, "- **Redis:** %s\n", s.Store.RedisAddr)
	default:
		fmt.Fprintf(&b, "- **Path:** %s\n", s.Store.Path)
	}
	fmt.Fprintf(&b, "- **Namespace:** %s\n", s.Store.Namespace)
	fmt.Fprintf(&b, "- **Gemini:** %s\n", s.Inference.GeminiURL)
	if s.Inference.OpenAIURL != "" {
		fmt.Fprintf(&b, "- **OpenAI:** %s\n", s.Inference.OpenAIURL)
	}
	fmt.Fprintf(&b, "- **Timeout:** %s\n", s.Inference.Timeout())
	return b.String()
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSettingsCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
