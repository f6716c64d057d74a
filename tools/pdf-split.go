package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-splitter/internal/logger"
	"github.com/Epistemic-Technology/pdf-splitter/internal/operations"
	"github.com/Epistemic-Technology/pdf-splitter/models"
)

// SplitService runs explicit split requests
type SplitService interface {
	Split(ctx context.Context, req models.SplitRequest) (*models.SplitResult, error)
}

type PDFSplitQuery struct {
	SourceFilePath           string `json:"sourceFilePath,omitempty" jsonschema:"local path of the PDF to split; takes precedence over the storage fields"`
	DestinationDirectoryPath string `json:"destinationDirectoryPath,omitempty" jsonschema:"local directory receiving the pages, created if missing"`
	SourceContainer          string `json:"sourceContainer,omitempty" jsonschema:"storage container holding the PDF"`
	DestinationContainer     string `json:"destinationContainer,omitempty" jsonschema:"storage container receiving the pages, created if missing"`
	FileName                 string `json:"fileName,omitempty" jsonschema:"name of the PDF object in sourceContainer"`
}

type PDFSplitResponse struct {
	Pages   int      `json:"pages"`
	Outputs []string `json:"outputs"`
	Message string   `json:"message"`
}

func PDFSplitTool() *mcp.Tool {
	inputschema, err := jsonschema.For[PDFSplitQuery](nil)
	if err != nil {
		panic(err)
	}
	return &mcp.Tool{
		Name:        "pdf-split",
		Description: "Split a PDF into one single-page PDF per page, named <stem>_Page_<n>.pdf. Provide either sourceFilePath and destinationDirectoryPath, or sourceContainer, destinationContainer and fileName.",
		InputSchema: inputschema,
	}
}

func PDFSplitToolHandler(ctx context.Context, req *mcp.CallToolRequest, query PDFSplitQuery, svc SplitService, log logger.Logger) (*mcp.CallToolResult, *PDFSplitResponse, error) {
	log.Info("pdf-split tool called")

	result, err := svc.Split(ctx, models.SplitRequest(query))
	if err != nil {
		log.Error("pdf-split tool failed: %v", err)
		return nil, nil, toolError(err)
	}

	response := &PDFSplitResponse{
		Pages:   result.Pages,
		Outputs: result.Outputs,
		Message: operations.MsgCompleted,
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("%s Wrote %d pages.", operations.MsgCompleted, result.Pages),
			},
		},
	}, response, nil
}

// toolError keeps caller-visible messages and hides the details of other failures
func toolError(err error) error {
	kind, message := operations.StatusOf(err)
	if message != "" {
		return errors.New(message)
	}
	return fmt.Errorf("PDF splitting failed (%s)", kind)
}
