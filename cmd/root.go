// Package cmd is the emotion-panel command tree.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"emotion-panel/classifier"
	"emotion-panel/panel"
	"emotion-panel/settings"
	"emotion-panel/store"
)

const envPrefix = "EMOTION_PANEL"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "emotion-panel",
	Short: "Show a character's emotion next to the story you are reading",
	Long: `emotion-panel classifies the latest paragraph of a story into one emotion
of a configurable taxonomy and shows the matching character image.

Run "emotion-panel serve" for the overlay backend, or use the subcommands
to analyze text and manage characters from the terminal.

Settings are read from the TOML file given by --config (default is
$XDG_CONFIG_HOME/emotion-panel/config.toml) and from EMOTION_PANEL_*
environment variables, e.g. EMOTION_PANEL_STORE_BACKEND=redis.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is $XDG_CONFIG_HOME/emotion-panel/config.toml)")
	rootCmd.PersistentFlags().String("store", "", "store backend: file, sqlite, postgres or redis")
	rootCmd.PersistentFlags().String("store-path", "", "state file for the file and sqlite backends")
	rootCmd.PersistentFlags().String("namespace", "", "key namespace inside shared stores")

	viper.BindPFlag("store.backend", rootCmd.PersistentFlags().Lookup("store"))
	viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store-path"))
	viper.BindPFlag("store.namespace", rootCmd.PersistentFlags().Lookup("namespace"))
}

// initConfig reads in the settings file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigFile(settings.DefaultPath())
	}
	viper.SetConfigType("toml")

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing file just means defaults.
	_ = viper.ReadInConfig()
}

// overridable lists the settings keys that flags and environment
// variables may override.
var overridable = []string{
	"server.addr",
	"store.backend",
	"store.path",
	"store.dsn",
	"store.redis_addr",
	"store.namespace",
	"inference.gemini_url",
	"inference.openai_url",
	"inference.timeout_seconds",
}

// loadSettings decodes the settings file and applies viper overrides.
func loadSettings(v *viper.Viper) (*settings.Settings, error) {
	s, err := settings.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	for _, key := range overridable {
		if !v.IsSet(key) {
			continue
		}
		if err := applyOverride(s, key, v); err != nil {
			return nil, err
		}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func applyOverride(s *settings.Settings, key string, v *viper.Viper) error {
	val := v.GetString(key)
	if val == "" {
		return nil
	}
	switch key {
	case "server.addr":
		s.Server.Addr = val
	case "store.backend":
		s.Store.Backend = val
	case "store.path":
		s.Store.Path = val
	case "store.dsn":
		s.Store.DSN = val
	case "store.redis_addr":
		s.Store.RedisAddr = val
	case "store.namespace":
		s.Store.Namespace = val
	case "inference.gemini_url":
		s.Inference.GeminiURL = val
	case "inference.openai_url":
		s.Inference.OpenAIURL = val
	case "inference.timeout_seconds":
		n := v.GetInt(key)
		if n <= 0 {
			return fmt.Errorf("inference.timeout_seconds must be positive, got %q", val)
		}
		s.Inference.TimeoutSeconds = n
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "[emotion-panel] %s\n", fmt.Sprintf(format, args...))
}

// cliNotifier prints panel notifications to stderr.
var cliNotifier = panel.NotifierFunc(func(level panel.Level, message string) {
	logf("%s: %s", level, message)
})

func newClassifier(s *settings.Settings) *classifier.Classifier {
	timeout := s.Inference.Timeout()
	return classifier.New(&classifier.Router{
		Gemini: classifier.NewGeminiEndpoint(s.Inference.GeminiURL, timeout),
		OpenAI: classifier.NewOpenAIEndpoint(s.Inference.OpenAIURL, timeout),
	})
}

// openPanel loads settings, opens the store and builds the panel. The
// returned store must be closed by the caller.
func openPanel(ctx context.Context) (*panel.Panel, store.Store, *settings.Settings, error) {
	s, err := loadSettings(viper.GetViper())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load settings: %w", err)
	}

	st, err := store.Open(ctx, store.Options{
		Backend:   s.Store.Backend,
		Path:      s.Store.Path,
		DSN:       s.Store.DSN,
		RedisAddr: s.Store.RedisAddr,
		Namespace: s.Store.Namespace,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s store: %w", s.Store.Backend, err)
	}

	p, err := panel.New(ctx, panel.Options{
		Store:      st,
		Classifier: newClassifier(s),
		Notifier:   cliNotifier,
	})
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}
	return p, st, s, nil
}

// withPanel runs fn against an open panel and closes the store afterwards.
func withPanel(cmd *cobra.Command, fn func(ctx context.Context, p *panel.Panel) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	p, st, _, err := openPanel(ctx)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(ctx, p)
}
