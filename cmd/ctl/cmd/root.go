package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jpfielding/tilemap.go/pkg/logging"
)

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tilemapctl",
		Short: "a CLI to slice world map images into deduplicated tile atlases",
		Long:  "tilemapctl extracts fixed-size tiles from raster world maps, collapses duplicates into a tileset atlas, and emits Tiled-compatible map documents.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig(cmd)
			logLevel := viper.GetString("log-level")

			// Parse log level
			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
				level = slog.LevelInfo
			}
			var w io.Writer = os.Stdout
			if logFile := viper.GetString("log-file"); logFile != "" {
				w = io.MultiWriter(os.Stdout, logging.Rotating(logFile))
			}
			slog.SetDefault(logging.Logger(w, viper.GetBool("log-json"), level))

			if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
				slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", logLevel, "error", err)
			}

		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd, 0)
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewExtractCmd(ctx),
		NewInspectCmd(ctx),
		NewRenderCmd(ctx),
	)
	pf := cmd.PersistentFlags()
	pf.String("config", "", "Config file with flag defaults")
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.Bool("log-json", false, "Emit logs as JSON")
	pf.String("log-file", "", "Also write logs to this rotating file")
	return cmd
}

// initConfig layers an optional config file and TILEMAPCTL_* environment
// variables under the flags of the command being run.
func initConfig(cmd *cobra.Command) {
	if cfg, _ := cmd.Flags().GetString("config"); cfg != "" {
		viper.SetConfigFile(cfg)
		if err := viper.ReadInConfig(); err != nil {
			slog.Warn("config file unreadable", "path", cfg, "error", err)
		}
	}
	viper.SetEnvPrefix("TILEMAPCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(cmd.Flags())
}

func printCommandTree(cmd *cobra.Command, indent int) {
	fmt.Println(strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(gitsha)
		},
	}
	return cmd
}
