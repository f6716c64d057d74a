package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Epistemic-Technology/pdf-splitter/internal/operations"
	"github.com/Epistemic-Technology/pdf-splitter/models"
)

type splitFlags struct {
	request string
	dryRun  bool
	req     models.SplitRequest
}

func newSplitCmd(a *app) *cobra.Command {
	f := &splitFlags{}

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split one PDF",
		Long: `Split one PDF into single-page PDFs.

Examples:
  # Local file into a local directory
  pdf-splitter split --source-file invoice.pdf --destination-dir out/

  # Blob into another container
  pdf-splitter split --source-container inbox --file-name invoice.pdf --destination-container pages

  # Request body as sent to POST /api/SplitPdfs
  pdf-splitter split --request request.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.split(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.req.SourceFilePath, "source-file", "", "local PDF to split")
	flags.StringVar(&f.req.DestinationDirectoryPath, "destination-dir", "", "local directory receiving the pages")
	flags.StringVar(&f.req.SourceContainer, "source-container", "", "container holding the PDF")
	flags.StringVar(&f.req.DestinationContainer, "destination-container", "", "container receiving the pages")
	flags.StringVar(&f.req.FileName, "file-name", "", "name of the PDF in the source container")
	flags.StringVar(&f.request, "request", "", "JSON request file; replaces the other request flags")
	flags.BoolVar(&f.dryRun, "dry-run", false, "print the pages and output names without writing")
	return cmd
}

func (a *app) split(cmd *cobra.Command, f *splitFlags) error {
	req := f.req
	if f.request != "" {
		file, err := os.Open(f.request)
		if err != nil {
			return fmt.Errorf("failed to open request: %w", err)
		}
		defer file.Close()

		if req, err = operations.DecodeRequest(file); err != nil {
			return err
		}
	}

	svc := a.service(nil)
	if !req.LocalMode() && a.cfg.StorageConfigured() {
		store, err := a.objectStore()
		if err != nil {
			return err
		}
		svc = a.service(store)
	}

	out := cmd.OutOrStdout()
	if f.dryRun {
		plan, err := svc.Preview(cmd.Context(), req)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	result, err := svc.Split(cmd.Context(), req)
	if err != nil {
		return err
	}
	for _, location := range result.Outputs {
		fmt.Fprintln(out, location)
	}
	fmt.Fprintln(out, operations.MsgCompleted)
	return nil
}
