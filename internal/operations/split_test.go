package operations

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Epistemic-Technology/pdf-splitter/internal/failure"
	"github.com/Epistemic-Technology/pdf-splitter/internal/pdf"
	"github.com/Epistemic-Technology/pdf-splitter/internal/pdf/pdftest"
	"github.com/Epistemic-Technology/pdf-splitter/internal/storage"
	"github.com/Epistemic-Technology/pdf-splitter/internal/storage/storagetest"
	"github.com/Epistemic-Technology/pdf-splitter/models"
)

const eventContainer = "samples-workitems-pages"

// fakeSplitter yields pages with content "<name>#<number>" and can fail at a page.
type fakeSplitter struct {
	pages    int
	parseErr error
	failAt   int
	pulled   int
}

func (f *fakeSplitter) Split(src models.SourceDocument) iter.Seq2[models.PageDocument, error] {
	return func(yield func(models.PageDocument, error) bool) {
		if f.parseErr != nil {
			yield(models.PageDocument{}, f.parseErr)
			return
		}
		for i := 0; i < f.pages; i++ {
			f.pulled++
			if f.failAt > 0 && i+1 == f.failAt {
				yield(models.PageDocument{}, failure.Newf(failure.ParseFailure, "page %d is broken", i+1))
				return
			}
			page := models.PageDocument{Index: i, Data: []byte(fmt.Sprintf("%s#%d", src.Name, i+1))}
			if !yield(page, nil) {
				return
			}
		}
	}
}

func newTestService(store storage.ObjectStore, splitter PageSplitter) *Service {
	return NewService(Options{
		FS:             storage.NewLocalFS(),
		Store:          store,
		Splitter:       splitter,
		EventContainer: eventContainer,
	})
}

func writeSource(t *testing.T, name string, pages int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, pdftest.Build(pages), 0644))
	return path
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSplit_LocalScenario(t *testing.T) {
	source := writeSource(t, "invoice.pdf", 3)
	out := filepath.Join(t.TempDir(), "out")
	svc := newTestService(nil, pdf.NewSplitter())

	result, err := svc.Split(context.Background(), models.SplitRequest{
		SourceFilePath:           source,
		DestinationDirectoryPath: out,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Pages)
	assert.Equal(t, []string{
		filepath.Join(out, "invoice_Page_1.pdf"),
		filepath.Join(out, "invoice_Page_2.pdf"),
		filepath.Join(out, "invoice_Page_3.pdf"),
	}, result.Outputs)
	assert.Equal(t, []string{"invoice_Page_1.pdf", "invoice_Page_2.pdf", "invoice_Page_3.pdf"}, listDir(t, out))

	for i, path := range result.Outputs {
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		count, err := api.PageCount(bytes.NewReader(data), nil)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "output %d must hold a single page", i+1)

		dims, err := api.PageDims(bytes.NewReader(data), nil)
		require.NoError(t, err)
		assert.Equal(t, pdftest.PageWidth(i), int(dims[0].Width), "output %d must hold page %d", i+1, i+1)
	}
}

func TestSplit_LocalIdempotent(t *testing.T) {
	source := writeSource(t, "report.pdf", 2)
	out := t.TempDir()
	svc := newTestService(nil, pdf.NewSplitter())
	req := models.SplitRequest{SourceFilePath: source, DestinationDirectoryPath: out}

	first, err := svc.Split(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Split(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Outputs, second.Outputs)
	assert.Equal(t, []string{"report_Page_1.pdf", "report_Page_2.pdf"}, listDir(t, out), "existing directory is reused and files overwritten")
}

func TestSplit_LocalZeroPages(t *testing.T) {
	source := writeSource(t, "empty.pdf", 1)
	out := filepath.Join(t.TempDir(), "out")
	svc := newTestService(nil, &fakeSplitter{pages: 0})

	result, err := svc.Split(context.Background(), models.SplitRequest{SourceFilePath: source, DestinationDirectoryPath: out})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Pages)
	assert.Empty(t, result.Outputs)
	assert.DirExists(t, out)
	assert.Empty(t, listDir(t, out))
}

func TestSplit_LocalNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.pdf")
	out := filepath.Join(t.TempDir(), "out")
	svc := newTestService(nil, &fakeSplitter{pages: 2})

	_, err := svc.Split(context.Background(), models.SplitRequest{SourceFilePath: missing, DestinationDirectoryPath: out})

	require.Error(t, err)
	kind, message := StatusOf(err)
	assert.Equal(t, failure.NotFound, kind)
	assert.Equal(t, "Source file not found: "+missing, message)
	assert.NoDirExists(t, out, "no output is written for a missing source")
}

func TestSplit_LocalPrefersSourceFilePath(t *testing.T) {
	source := writeSource(t, "local.pdf", 2)
	out := t.TempDir()
	store := storagetest.NewMemoryStore()
	store.Put("inbox", "remote.pdf", pdftest.Build(5))
	svc := newTestService(store, pdf.NewSplitter())

	result, err := svc.Split(context.Background(), models.SplitRequest{
		SourceFilePath:           source,
		DestinationDirectoryPath: out,
		SourceContainer:          "inbox",
		DestinationContainer:     "pages",
	})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Pages)
	assert.False(t, store.HasContainer("pages"))
	assert.Equal(t, []string{"local_Page_1.pdf", "local_Page_2.pdf"}, listDir(t, out))
}

func TestSplit_LocalNamesFromFileName(t *testing.T) {
	source := writeSource(t, "upload-1234.pdf", 1)
	out := t.TempDir()
	svc := newTestService(nil, pdf.NewSplitter())

	_, err := svc.Split(context.Background(), models.SplitRequest{
		SourceFilePath:           source,
		DestinationDirectoryPath: out,
		FileName:                 "contract.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"contract_Page_1.pdf"}, listDir(t, out))
}

func TestSplit_Storage(t *testing.T) {
	store := storagetest.NewMemoryStore()
	store.Put("inbox", "report.pdf", pdftest.Build(4))
	svc := newTestService(store, pdf.NewSplitter())

	result, err := svc.Split(context.Background(), models.SplitRequest{
		SourceContainer:      "inbox",
		DestinationContainer: "pages",
		FileName:             "report.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, 4, result.Pages)
	assert.True(t, store.HasContainer("pages"), "destination container is created")
	assert.Equal(t, []string{"report_Page_1.pdf", "report_Page_2.pdf", "report_Page_3.pdf", "report_Page_4.pdf"}, store.Names("pages"))
	assert.Equal(t, "pages/report_Page_3.pdf", result.Outputs[2])

	obj, ok := store.Get("pages", "report_Page_3.pdf")
	require.True(t, ok)
	assert.Equal(t, "application/pdf", obj.ContentType)
	count, err := api.PageCount(bytes.NewReader(obj.Data), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSplit_StorageExistingContainerOverwrites(t *testing.T) {
	store := storagetest.NewMemoryStore()
	store.Put("inbox", "report.pdf", []byte("%PDF-fake"))
	store.Put("pages", "report_Page_1.pdf", []byte("stale"))
	svc := newTestService(store, &fakeSplitter{pages: 2})
	req := models.SplitRequest{SourceContainer: "inbox", DestinationContainer: "pages", FileName: "report.pdf"}

	_, err := svc.Split(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Split(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"report_Page_1.pdf", "report_Page_2.pdf"}, store.Names("pages"))
	obj, _ := store.Get("pages", "report_Page_1.pdf")
	assert.Equal(t, "report.pdf#1", string(obj.Data))
}

func TestSplit_StorageNotFound(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*storagetest.MemoryStore)
	}{
		{"missing object", func(s *storagetest.MemoryStore) { s.CreateContainer("inbox") }},
		{"missing container", func(s *storagetest.MemoryStore) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storagetest.NewMemoryStore()
			tt.setup(store)
			svc := newTestService(store, &fakeSplitter{pages: 2})

			_, err := svc.Split(context.Background(), models.SplitRequest{
				SourceContainer:      "inbox",
				DestinationContainer: "pages",
				FileName:             "ghost.pdf",
			})

			kind, message := StatusOf(err)
			assert.Equal(t, failure.NotFound, kind)
			assert.Equal(t, "Blob ghost.pdf not found in container inbox.", message)
			assert.Zero(t, store.Uploads())
			assert.False(t, store.HasContainer("pages"))
		})
	}
}

func TestSplit_StorageNotConfigured(t *testing.T) {
	svc := newTestService(nil, &fakeSplitter{pages: 1})

	_, err := svc.Split(context.Background(), models.SplitRequest{
		SourceContainer:      "inbox",
		DestinationContainer: "pages",
		FileName:             "a.pdf",
	})

	kind, message := StatusOf(err)
	assert.Equal(t, failure.Internal, kind)
	assert.Empty(t, message)
}

func TestSplit_InvalidRequestWritesNothing(t *testing.T) {
	store := storagetest.NewMemoryStore()
	splitter := &fakeSplitter{pages: 3}
	svc := newTestService(store, splitter)

	_, err := svc.Split(context.Background(), models.SplitRequest{DestinationContainer: "pages"})

	kind, message := StatusOf(err)
	assert.Equal(t, failure.InvalidInput, kind)
	assert.Equal(t, MsgMissingSource, message)
	assert.Zero(t, store.Uploads())
	assert.Zero(t, splitter.pulled)
}

func TestSplit_ParseFailure(t *testing.T) {
	store := storagetest.NewMemoryStore()
	store.Put("inbox", "notes.pdf", []byte("This is not a PDF"))
	svc := newTestService(store, pdf.NewSplitter())

	result, err := svc.Split(context.Background(), models.SplitRequest{
		SourceContainer:      "inbox",
		DestinationContainer: "pages",
		FileName:             "notes.pdf",
	})

	kind, message := StatusOf(err)
	assert.Equal(t, failure.ParseFailure, kind)
	assert.Empty(t, message, "parse details are not exposed")
	assert.Zero(t, result.Pages)
	assert.Empty(t, store.Names("pages"))
}

func TestSplit_PartialFailureKeepsWrittenPages(t *testing.T) {
	store := storagetest.NewMemoryStore()
	store.Put("inbox", "big.pdf", []byte("%PDF-fake"))
	store.FailUploadAfter = 2
	splitter := &fakeSplitter{pages: 5}
	svc := newTestService(store, splitter)

	result, err := svc.Split(context.Background(), models.SplitRequest{
		SourceContainer:      "inbox",
		DestinationContainer: "pages",
		FileName:             "big.pdf",
	})

	require.Error(t, err)
	assert.Equal(t, failure.SinkFailure, failure.KindOf(err))
	assert.Contains(t, err.Error(), "page 3")
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, []string{"big_Page_1.pdf", "big_Page_2.pdf"}, store.Names("pages"))
	assert.Equal(t, 3, splitter.pulled, "no page is extracted after the failing write")
}

func TestSplit_ExtractionFailureMidway(t *testing.T) {
	store := storagetest.NewMemoryStore()
	store.Put("inbox", "big.pdf", []byte("%PDF-fake"))
	svc := newTestService(store, &fakeSplitter{pages: 4, failAt: 3})

	result, err := svc.Split(context.Background(), models.SplitRequest{
		SourceContainer:      "inbox",
		DestinationContainer: "pages",
		FileName:             "big.pdf",
	})

	assert.Equal(t, failure.ParseFailure, failure.KindOf(err))
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, []string{"big_Page_1.pdf", "big_Page_2.pdf"}, store.Names("pages"))
}

func TestSplit_ContainerCreationFailure(t *testing.T) {
	store := storagetest.NewMemoryStore()
	store.Put("inbox", "a.pdf", []byte("%PDF-fake"))
	store.FailEnsure = true
	splitter := &fakeSplitter{pages: 2}
	svc := newTestService(store, splitter)

	_, err := svc.Split(context.Background(), models.SplitRequest{
		SourceContainer:      "inbox",
		DestinationContainer: "pages",
		FileName:             "a.pdf",
	})

	assert.Equal(t, failure.SinkFailure, failure.KindOf(err))
	assert.Zero(t, splitter.pulled)
}

func TestSplit_LocalDirectoryCreationFailure(t *testing.T) {
	source := writeSource(t, "a.pdf", 1)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	svc := newTestService(nil, pdf.NewSplitter())

	_, err := svc.Split(context.Background(), models.SplitRequest{
		SourceFilePath:           source,
		DestinationDirectoryPath: filepath.Join(blocker, "out"),
	})

	kind, message := StatusOf(err)
	assert.Equal(t, failure.SinkFailure, kind)
	assert.Empty(t, message)
}

func TestSplitUpload(t *testing.T) {
	store := storagetest.NewMemoryStore()
	svc := newTestService(store, pdf.NewSplitter())

	result, err := svc.SplitUpload(context.Background(), "scans/receipt.pdf", bytes.NewReader(pdftest.Build(2)))

	require.NoError(t, err)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, []string{"receipt_Page_1.pdf", "receipt_Page_2.pdf"}, store.Names(eventContainer))
}

func TestSplitUpload_Failure(t *testing.T) {
	store := storagetest.NewMemoryStore()
	svc := newTestService(store, pdf.NewSplitter())

	_, err := svc.SplitUpload(context.Background(), "broken.pdf", strings.NewReader("garbage"))

	assert.Equal(t, failure.ParseFailure, failure.KindOf(err))
	assert.Empty(t, store.Names(eventContainer))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestSplitUpload_ReadFailure(t *testing.T) {
	store := storagetest.NewMemoryStore()
	svc := newTestService(store, &fakeSplitter{pages: 1})

	_, err := svc.SplitUpload(context.Background(), "a.pdf", failingReader{})

	require.Error(t, err)
	assert.Zero(t, store.Uploads())
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "validating", StageValidating.String())
	assert.Equal(t, "resolving", StageResolving.String())
	assert.Equal(t, "splitting", StageSplitting.String())
	assert.Equal(t, "done", StageDone.String())
	assert.Equal(t, "failed", StageFailed.String())
}

func TestPreview(t *testing.T) {
	store := storagetest.NewMemoryStore()
	store.Put("inbox", "reports/q3.pdf", pdftest.Build(3))
	svc := newTestService(store, pdf.NewSplitter())

	plan, err := svc.Preview(context.Background(), models.SplitRequest{
		SourceContainer:      "inbox",
		DestinationContainer: "pages",
		FileName:             "reports/q3.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "reports/q3.pdf", plan.Source)
	assert.Equal(t, "container pages", plan.Destination)
	assert.Equal(t, 3, plan.Pages)
	assert.Equal(t, []string{"q3_Page_1.pdf", "q3_Page_2.pdf", "q3_Page_3.pdf"}, plan.Outputs)
	assert.False(t, store.HasContainer("pages"), "preview writes nothing")
	assert.Zero(t, store.Uploads())
}

func TestPreview_CountsWithoutPageCounter(t *testing.T) {
	source := writeSource(t, "memo.pdf", 1)
	out := filepath.Join(t.TempDir(), "out")
	svc := newTestService(nil, &fakeSplitter{pages: 2})

	plan, err := svc.Preview(context.Background(), models.SplitRequest{SourceFilePath: source, DestinationDirectoryPath: out})

	require.NoError(t, err)
	assert.Equal(t, 2, plan.Pages)
	assert.Equal(t, []string{"memo_Page_1.pdf", "memo_Page_2.pdf"}, plan.Outputs)
	assert.NoDirExists(t, out)
}

func TestPreview_Errors(t *testing.T) {
	svc := newTestService(storagetest.NewMemoryStore(), &fakeSplitter{parseErr: failure.New(failure.ParseFailure, "bad")})

	_, err := svc.Preview(context.Background(), models.SplitRequest{})
	assert.Equal(t, failure.InvalidInput, failure.KindOf(err))

	source := writeSource(t, "bad.pdf", 1)
	_, err = svc.Preview(context.Background(), models.SplitRequest{SourceFilePath: source, DestinationDirectoryPath: t.TempDir()})
	assert.Equal(t, failure.ParseFailure, failure.KindOf(err))
}
