package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/clipsense/ai/observability/logging"
	"github.com/hrygo/clipsense/internal/profile"
)

var (
	rootCmd = &cobra.Command{
		Use:           "clipsense",
		Short:         `Context-aware clipboard text enhancement. Pipe text in, get a polished version out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Only load .env for direct binary execution (not when running as systemd service)
			if !isRunningAsSystemdService() {
				// Try to load .env file from current directory (ignore error if file doesn't exist)
				_ = godotenv.Load()
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(),
				logging.ParseLevel(viper.GetString("log-level")),
				logging.Format(viper.GetString("log-format"))))
			return nil
		},
	}
)

func init() {
	viper.SetDefault("log-level", "warn")
	viper.SetDefault("log-format", "text")
	viper.SetDefault("history", true)

	rootCmd.PersistentFlags().String("data", "", "data directory (default: user config dir)")
	rootCmd.PersistentFlags().String("config-dir", "", "directory holding prompt templates and catalog overrides (default: data directory)")
	rootCmd.PersistentFlags().String("dsn", "", "history database path")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider: openai, gemini, deepseek, siliconflow, openrouter, ollama")
	rootCmd.PersistentFlags().String("base-url", "", "LLM endpoint, overrides the provider default")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
	rootCmd.PersistentFlags().Bool("history", true, "record enhancements in the history database")

	for _, name := range []string{"data", "config-dir", "dsn", "provider", "base-url", "log-level", "log-format", "history"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("clipsense")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(enhanceCmd, classifyCmd, historyCmd, versionCmd)
}

// loadProfile reads CLIPSENSE_* variables, lets explicit flags win, and validates the result.
func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{}
	p.FromEnv()

	overrideString := func(target *string, key string) {
		if viper.IsSet(key) {
			*target = viper.GetString(key)
		}
	}
	overrideString(&p.Data, "data")
	overrideString(&p.ConfigDir, "config-dir")
	overrideString(&p.DSN, "dsn")
	overrideString(&p.LLMProvider, "provider")
	overrideString(&p.LLMBaseURL, "base-url")
	overrideString(&p.LogLevel, "log-level")
	overrideString(&p.LogFormat, "log-format")
	if viper.IsSet("history") {
		p.HistoryEnabled = viper.GetBool("history")
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// isRunningAsSystemdService detects if the process is running under systemd
func isRunningAsSystemdService() bool {
	// Check if invoked by systemd (environment variables set by systemd)
	return os.Getenv("INVOCATION_ID") != "" || os.Getenv("WATCHDOG_USEC") != ""
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}
