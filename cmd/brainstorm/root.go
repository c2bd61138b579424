package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/config"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/mcptools"
)

// Version is the build-time server version, overridden via -ldflags
// "-X main.Version=...". Shared with mcptools so the `version` CLI command
// and the `version` MCP tool never drift apart.
var Version = "dev"

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "brainstorm",
	Short: "Filesystem-backed MCP server for multi-agent project collaboration",
	Long: `Brainstorm is an MCP tool server that lets independent coding-agent
processes collaborate on a project through a shared data directory: no
database, no network service, just locked and fsynced files under
$BRAINSTORM_DATA_ROOT (default ~/.brainstorm).

Quick start:
  brainstorm serve            run the MCP server over stdio
  brainstorm doctor           check the data root and tail today's audit log
  brainstorm version          print the server version`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg = loaded
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil)).With("component", "cli")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config.toml (default: "+config.DefaultConfigPath()+")")
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newDoctorCmd())
	mcptools.Version = Version
}

// Execute runs the root command, returning any error for main to report.
func Execute() error {
	return rootCmd.Execute()
}
