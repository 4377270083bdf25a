package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yomidocs/yomidoc-go/logging"
	"github.com/yomidocs/yomidoc-go/yomidoc"
	"go.uber.org/zap"
)

var (
	configPath string
	logStyle   string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "yomidoc",
	Short: "Japanese PDF text extraction with verification",
	Long: `yomidoc extracts reading-ordered text from Japanese PDF documents.

It reconstructs columns and lines from positioned word boxes, attaches
superscripts and subscripts, matches footnote markers to their
definitions, and verifies the output against a pre-extraction element
inventory to catch missing or invented content.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logStyle, "log-style", "terminal", "Log style: terminal, json, noop")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	viper.SetEnvPrefix("YOMIDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for _, name := range []string{"config", "log-style", "log-level"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig builds the pipeline config from the defaults, the optional
// config file, and environment overrides.
func loadConfig() (yomidoc.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		return yomidoc.DefaultConfig(), nil
	}
	return yomidoc.LoadConfig(path)
}

func newLogger() (*zap.Logger, error) {
	return logging.NewLogger(&logging.Config{
		Style: logging.Style(viper.GetString("log-style")),
		Level: viper.GetString("log-level"),
	})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
