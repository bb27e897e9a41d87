// browsion-mcp bridges the Browsion core's REST API to MCP tools over
// stdio, so an MCP-speaking agent can drive browser automation without
// talking HTTP directly.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/browsion/browsion-core/internal/config"
	"github.com/browsion/browsion-core/internal/mcpbridge"
)

var (
	apiURL string
	apiKey string
)

var rootCmd = &cobra.Command{
	Use:   "browsion-mcp",
	Short: "Run an MCP stdio server that drives a browsiond instance",
	Long: `browsion-mcp translates every browsiond REST endpoint into an MCP tool
and serves them over stdio, so an MCP client can launch, navigate, and
inspect browser profiles without speaking HTTP.

It expects a browsiond instance already running and reachable at --api-url.

Example:
  BROWSION_API_URL=http://127.0.0.1:38472 BROWSION_API_KEY=secret browsion-mcp`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&apiURL, "api-url", envOr("BROWSION_API_URL", "http://127.0.0.1:38472"),
		"base URL of the running browsiond instance")
	rootCmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("BROWSION_API_KEY"),
		"X-API-Key header to send with every request (overrides BROWSION_API_KEY)")
	rootCmd.Version = config.Version
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(cmd *cobra.Command, args []string) error {
	bridge := mcpbridge.New(apiURL, apiKey)

	readyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := bridge.WaitReady(readyCtx); err != nil {
		return fmt.Errorf("browsiond not reachable at %s: %w", apiURL, err)
	}
	log.Printf("browsion-mcp: connected to browsiond at %s", apiURL)

	mcpServer := server.NewMCPServer("browsion", config.Version, server.WithToolCapabilities(false))
	mcpbridge.Register(mcpServer, bridge)

	return server.ServeStdio(mcpServer)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.SetOutput(os.Stderr)
		log.Println(err)
		os.Exit(1)
	}
}
