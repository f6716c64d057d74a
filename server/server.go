package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-splitter/internal/logger"
	"github.com/Epistemic-Technology/pdf-splitter/internal/operations"
	"github.com/Epistemic-Technology/pdf-splitter/resources"
	"github.com/Epistemic-Technology/pdf-splitter/tools"
)

// Version is reported to MCP clients
var Version = "v0.1.0"

// SplitService is the split pipeline exposed over MCP
type SplitService interface {
	tools.SplitService
	resources.Previewer
}

var _ SplitService = (*operations.Service)(nil)

// CreateServer builds the MCP server exposing the pdf-split tool and split plans
func CreateServer(svc SplitService, log logger.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "pdf-splitter", Version: Version}, nil)

	planHandler := resources.NewPlanResourceHandler(svc)

	mcp.AddTool(server, tools.PDFSplitTool(), func(ctx context.Context, req *mcp.CallToolRequest, query tools.PDFSplitQuery) (*mcp.CallToolResult, *tools.PDFSplitResponse, error) {
		return tools.PDFSplitToolHandler(ctx, req, query, svc, log)
	})

	// Template for split plans
	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resources.PlanURITemplate,
		Name:        "pdf-split-plan",
		Description: "Pages and output names a split request would produce, without writing anything",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		log.Debug("reading %s", req.Params.URI)
		return planHandler.ReadResource(ctx, req.Params.URI)
	})

	return server
}
