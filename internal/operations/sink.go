package operations

import (
	"context"
	"fmt"

	"github.com/Epistemic-Technology/pdf-splitter/internal/failure"
	"github.com/Epistemic-Technology/pdf-splitter/internal/storage"
)

// pdfContentType is the content type of uploaded pages
const pdfContentType = "application/pdf"

// Sink persists single-page documents
type Sink interface {
	// Prepare makes sure the destination exists
	Prepare(ctx context.Context) error
	// Write stores data under name, overwriting, and returns its location
	Write(ctx context.Context, name string, data []byte) (string, error)
	// String describes the destination for logs
	String() string
}

// LocalSink writes pages into a local directory
type LocalSink struct {
	FS  FileSystem
	Dir string
}

func (s *LocalSink) Prepare(ctx context.Context) error {
	return failure.Wrap(failure.SinkFailure, s.FS.EnsureDir(s.Dir), "failed to prepare destination directory")
}

func (s *LocalSink) Write(ctx context.Context, name string, data []byte) (string, error) {
	path, err := s.FS.WriteFile(s.Dir, name, data)
	if err != nil {
		return "", failure.Wrap(failure.SinkFailure, err, "failed to write page")
	}
	return path, nil
}

func (s *LocalSink) String() string {
	return fmt.Sprintf("directory %s", s.Dir)
}

// BlobSink uploads pages into a storage container
type BlobSink struct {
	Store     storage.ObjectStore
	Container string
}

func (s *BlobSink) Prepare(ctx context.Context) error {
	if s.Store == nil {
		return failure.Wrap(failure.SinkFailure, errStorageNotConfigured, "failed to prepare destination container")
	}
	return failure.Wrap(failure.SinkFailure, s.Store.EnsureContainer(ctx, s.Container), "failed to prepare destination container")
}

func (s *BlobSink) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := s.Store.Upload(ctx, s.Container, name, data, pdfContentType); err != nil {
		return "", failure.Wrap(failure.SinkFailure, err, "failed to upload page")
	}
	return storage.ObjectLocation(s.Container, name), nil
}

func (s *BlobSink) String() string {
	return fmt.Sprintf("container %s", s.Container)
}
