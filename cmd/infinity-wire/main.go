// Command infinity-wire translates, runs, serves and decodes select requests
// of the columnar wire protocol.
//
// Usage:
//
//	infinity-wire translate --table items --columns '*,c2' --filter 'c1 > 3 and c2 < 5.0' --limit 10
//	infinity-wire query --duckdb data.db --table items --filter 'c1 > 3'
//	infinity-wire query --addr localhost:23817 --token secret --table items
//	infinity-wire serve --duckdb data.db --listen :23817 --token secret
//	infinity-wire decode response.msgpack
//
// Every flag can also be set in a config file (--config) or through an
// INFINITY_ environment variable, e.g. INFINITY_ADDR or INFINITY_LOG_LEVEL.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hugr-lab/infinity-go/internal/logging"
)

const envPrefix = "INFINITY"

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "infinity-wire",
		Short:         "Columnar wire protocol tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cmd)
		},
	}

	root.PersistentFlags().String("config", "", "config file (yaml, json or toml)")
	root.PersistentFlags().String("log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newTranslateCmd(v),
		newQueryCmd(v),
		newServeCmd(v),
		newDecodeCmd(v),
	)
	return root
}

// initConfig binds the flags of cmd to viper keys and loads the config file.
// Precedence: flag, environment, config file, flag default.
func initConfig(v *viper.Viper, cmd *cobra.Command) error {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return nil
}

// newLogger builds the stderr logger for the configured level.
func newLogger(v *viper.Viper) *slog.Logger {
	return logging.New(os.Stderr, logging.ParseLevel(v.GetString("log-level")))
}
