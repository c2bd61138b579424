package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/audit"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/config"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/mcptools"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/store"
	"github.com/TheodorStorm/brainstorm-mcp-sub001/internal/waiter"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Brainstorm MCP server over stdio",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditor := audit.New(cfg.DataRoot, logger)
	engine := store.New(cfg.DataRoot, auditor,
		store.WithLockTimeout(cfg.LockTimeout),
		store.WithPayloadCaps(config.DefaultInlineContentLimit, cfg.MaxPayloadSize, config.DefaultResourceFileCap),
		store.WithLogger(logger),
	)
	wait := waiter.New(cfg.PollInterval)

	if err := config.Watch(ctx, config.DefaultConfigPath(), logger, func(fresh *config.Config) {
		cfg = fresh
	}); err != nil {
		logger.Warn("config hot-reload disabled", "error", err)
	}

	tools := mcptools.New(engine, wait, cfg, logger)
	mcpServer := server.NewMCPServer("brainstorm", Version)
	tools.Register(mcpServer)

	printBanner()
	logger.Info("serve.started", "data_root", cfg.DataRoot, "version", Version)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.LockTimeout)
		defer cancel()
		if err := wait.Shutdown(shutdownCtx); err != nil {
			logger.Warn("serve.shutdown_incomplete", "error", err)
		}
	}()

	if err := server.ServeStdio(mcpServer); err != nil {
		return fmt.Errorf("serving MCP over stdio: %w", err)
	}
	return nil
}

func printBanner() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Render("brainstorm")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	fmt.Fprintln(os.Stderr, box.Render(fmt.Sprintf("%s %s\ndata root: %s", title, Version, cfg.DataRoot)))
}
