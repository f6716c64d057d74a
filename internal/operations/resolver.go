package operations

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Epistemic-Technology/pdf-splitter/internal/failure"
	"github.com/Epistemic-Technology/pdf-splitter/internal/storage"
	"github.com/Epistemic-Technology/pdf-splitter/models"
)

var errStorageNotConfigured = errors.New("storage is not configured")

// FileSystem is the local filesystem capability used for local sources and sinks
type FileSystem interface {
	FileExists(path string) (bool, error)
	ReadFile(path string) ([]byte, error)
	EnsureDir(dir string) error
	WriteFile(dir, name string, data []byte) (string, error)
}

// Resolver obtains the full content of a request's source document
type Resolver struct {
	fs    FileSystem
	store storage.ObjectStore
}

// NewResolver creates a resolver. store may be nil when storage mode is not
// available.
func NewResolver(fs FileSystem, store storage.ObjectStore) *Resolver {
	return &Resolver{fs: fs, store: store}
}

// Resolve reads the source named by req: the local file when sourceFilePath is
// set, otherwise the object fileName in sourceContainer. A missing file or
// object is NotFound.
func (r *Resolver) Resolve(ctx context.Context, req models.SplitRequest) (models.SourceDocument, error) {
	if req.LocalMode() {
		return r.fromFile(req)
	}
	return r.fromStore(ctx, req)
}

func (r *Resolver) fromFile(req models.SplitRequest) (models.SourceDocument, error) {
	exists, err := r.fs.FileExists(req.SourceFilePath)
	if err != nil {
		return models.SourceDocument{}, failure.Wrap(failure.Internal, err, "failed to check source file")
	}
	if !exists {
		return models.SourceDocument{}, failure.Newf(failure.NotFound, "Source file not found: %s", req.SourceFilePath)
	}

	data, err := r.fs.ReadFile(req.SourceFilePath)
	if err != nil {
		return models.SourceDocument{}, failure.Wrap(failure.Internal, err, "failed to read source file")
	}
	return models.SourceDocument{Name: req.SourceName(), Data: data}, nil
}

func (r *Resolver) fromStore(ctx context.Context, req models.SplitRequest) (models.SourceDocument, error) {
	if r.store == nil {
		return models.SourceDocument{}, failure.Wrap(failure.Internal, errStorageNotConfigured, "failed to resolve source object")
	}

	exists, err := r.store.Exists(ctx, req.SourceContainer, req.FileName)
	if err != nil {
		return models.SourceDocument{}, failure.Wrap(failure.Internal, err, "failed to check source object")
	}
	if !exists {
		return models.SourceDocument{}, failure.Newf(failure.NotFound, "Blob %s not found in container %s.", req.FileName, req.SourceContainer)
	}

	data, err := r.store.Download(ctx, req.SourceContainer, req.FileName)
	if err != nil {
		return models.SourceDocument{}, failure.Wrap(failure.Internal, err, "failed to download source object")
	}
	return models.SourceDocument{Name: req.SourceName(), Data: data}, nil
}

// FromReader builds the source document of an upload event from its content
// stream and object name.
func FromReader(name string, r io.Reader) (models.SourceDocument, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return models.SourceDocument{}, failure.Wrap(failure.Internal, err, fmt.Sprintf("failed to read upload %s", name))
	}
	return models.SourceDocument{Name: name, Data: data}, nil
}
