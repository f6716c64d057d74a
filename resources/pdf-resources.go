package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Epistemic-Technology/pdf-splitter/internal/operations"
	"github.com/Epistemic-Technology/pdf-splitter/models"
)

const (
	// PlanScheme is the URI scheme of split plans
	PlanScheme = "pdf-split"
	// PlanURITemplate addresses the plan of a split request by its fields, in
	// the sorted order PlanURI encodes them
	PlanURITemplate = "pdf-split://plan{?destinationContainer,destinationDirectoryPath,fileName,sourceContainer,sourceFilePath}"
)

// Previewer reports what a split request would produce
type Previewer interface {
	Preview(ctx context.Context, req models.SplitRequest) (*models.SplitPlan, error)
}

// PlanResourceHandler serves split plans as JSON resources
type PlanResourceHandler struct {
	svc Previewer
}

// NewPlanResourceHandler creates a new plan resource handler
func NewPlanResourceHandler(svc Previewer) *PlanResourceHandler {
	return &PlanResourceHandler{svc: svc}
}

// PlanURI returns the resource URI of the plan for req
func PlanURI(req models.SplitRequest) string {
	q := url.Values{}
	for key, value := range map[string]string{
		"sourceFilePath":           req.SourceFilePath,
		"destinationDirectoryPath": req.DestinationDirectoryPath,
		"sourceContainer":          req.SourceContainer,
		"destinationContainer":     req.DestinationContainer,
		"fileName":                 req.FileName,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	u := url.URL{Scheme: PlanScheme, Host: "plan", RawQuery: q.Encode()}
	return u.String()
}

// ParsePlanURI decodes the split request addressed by uri
func ParsePlanURI(uri string) (models.SplitRequest, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return models.SplitRequest{}, fmt.Errorf("invalid URI: %w", err)
	}
	if u.Scheme != PlanScheme {
		return models.SplitRequest{}, fmt.Errorf("invalid URI scheme, expected %s://", PlanScheme)
	}
	if u.Host != "plan" {
		return models.SplitRequest{}, fmt.Errorf("unknown resource type: %s", u.Host)
	}

	q := u.Query()
	return models.SplitRequest{
		SourceFilePath:           q.Get("sourceFilePath"),
		DestinationDirectoryPath: q.Get("destinationDirectoryPath"),
		SourceContainer:          q.Get("sourceContainer"),
		DestinationContainer:     q.Get("destinationContainer"),
		FileName:                 q.Get("fileName"),
	}, nil
}

func (h *PlanResourceHandler) ReadResource(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	req, err := ParsePlanURI(uri)
	if err != nil {
		return nil, err
	}

	plan, err := h.svc.Preview(ctx, req)
	if err != nil {
		kind, message := operations.StatusOf(err)
		if message == "" {
			message = kind.String()
		}
		return nil, fmt.Errorf("failed to plan split: %s", message)
	}

	content, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(content),
			},
		},
	}, nil
}
