// ABOUTME: MCP server subcommand
// ABOUTME: Serves list status, dry-run previews, and sync history over stdio
package cli

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harperreed/groupsync/handlers"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	RunE:  runMCP,
}

func init() {
	RootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()

	// Previews never write to the destination
	syncer, err := a.syncer(ctx, true)
	if err != nil {
		return err
	}

	a.log.Info("starting MCP server", zap.Int("lists", len(a.cfg.Lists)))

	server := newMCPServer(
		handlers.NewSyncHandlers(a.db, a.cfg.Lists, syncer),
		handlers.NewResourceHandlers(a.db),
	)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func newMCPServer(syncHandlers *handlers.SyncHandlers, resourceHandlers *handlers.ResourceHandlers) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "groupsync",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_sync_lists",
		Description: "List configured groups with their last sync status",
	}, syncHandlers.ListSyncLists)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview_list_sync",
		Description: "Show which contacts a sync would add to or remove from a group, without changing anything",
	}, syncHandlers.PreviewListSync)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "sync_history",
		Description: "List recent sync runs, optionally for one group",
	}, syncHandlers.SyncHistory)

	server.AddResource(&mcp.Resource{
		URI:         "groupsync://status",
		Name:        "status",
		Description: "Sync state of every list that has been synced",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "groupsync://runs",
		Name:        "runs",
		Description: "Most recent sync runs across all lists",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "groupsync://runs/{id}",
		Name:        "run-changes",
		Description: "Membership changes recorded for one sync run",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	return server
}
