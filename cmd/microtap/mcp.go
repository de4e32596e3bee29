package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/deixis/microtap/internal/logger"
	tapmcp "github.com/deixis/microtap/internal/mcp"
	"github.com/deixis/microtap/internal/report"
)

type mcpOptions struct {
	httpAddr     string
	instructions bool
}

func newMCPCmd(flags *rootFlags) *cobra.Command {
	opts := &mcpOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP server on stdio, or over HTTP with --http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.instructions {
				fmt.Fprint(cmd.OutOrStdout(), tapmcp.Instructions)
				return nil
			}
			return runMCP(cmd, flags, opts)
		},
	}

	cmd.Flags().StringVar(&opts.httpAddr, "http", "", "Serve streamable HTTP on this address (e.g. :9090)")
	cmd.Flags().BoolVar(&opts.instructions, "instructions", false, "Print the model instructions and exit")

	return cmd
}

func runMCP(cmd *cobra.Command, flags *rootFlags, opts *mcpOptions) error {
	s, err := openSession(flags, "", cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	store := report.NewLRUStore(s.cfg.HistorySize(), report.NewDiskStore(s.cfg.StoreDir))
	server := tapmcp.NewServer(s.cfg, store, s.dir, s.log)

	if opts.httpAddr != "" {
		return serveHTTP(ctx, server, opts.httpAddr, s.log)
	}
	return server.Run(ctx, &mcpsdk.StdioTransport{})
}

func serveHTTP(ctx context.Context, server *mcpsdk.Server, addr string, log *logger.Logger) error {
	handler := mcpsdk.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcpsdk.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.WithFields(map[string]any{"addr": addr}).Info("listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
