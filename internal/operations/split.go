package operations

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/Epistemic-Technology/pdf-splitter/internal/failure"
	"github.com/Epistemic-Technology/pdf-splitter/internal/logger"
	"github.com/Epistemic-Technology/pdf-splitter/internal/storage"
	"github.com/Epistemic-Technology/pdf-splitter/models"
)

// PageSplitter yields the pages of a source document as single-page documents,
// in ascending order, in a single pass.
type PageSplitter interface {
	Split(src models.SourceDocument) iter.Seq2[models.PageDocument, error]
}

// PageCounter counts pages without extracting them
type PageCounter interface {
	Count(src models.SourceDocument) (int, error)
}

// Stage is a step of a split invocation
type Stage int

const (
	StageValidating Stage = iota
	StageResolving
	StageSplitting
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StageValidating:
		return "validating"
	case StageResolving:
		return "resolving"
	case StageSplitting:
		return "splitting"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configures a Service
type Options struct {
	FS       FileSystem
	Store    storage.ObjectStore
	Splitter PageSplitter
	// EventContainer receives the pages of documents uploaded to the inbox
	EventContainer string
	Log            logger.Logger
}

// Service runs the split pipeline for both entry points. It keeps no state
// between invocations.
type Service struct {
	resolver       *Resolver
	fs             FileSystem
	store          storage.ObjectStore
	splitter       PageSplitter
	eventContainer string
	log            logger.Logger
}

// NewService creates a Service
func NewService(opts Options) *Service {
	log := opts.Log
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		resolver:       NewResolver(opts.FS, opts.Store),
		fs:             opts.FS,
		store:          opts.Store,
		splitter:       opts.Splitter,
		eventContainer: opts.EventContainer,
		log:            log,
	}
}

// Split handles an explicit split request: it validates req, resolves the
// source, then writes one document per page to the requested destination.
// Pages written before a failure stay at the destination.
func (s *Service) Split(ctx context.Context, req models.SplitRequest) (*models.SplitResult, error) {
	s.log.Debug("split request: %s", StageValidating)
	if err := Validate(req); err != nil {
		s.log.Warn("split request rejected: %v", err)
		return nil, err
	}

	s.log.Debug("split request %s: %s", req.SourceName(), StageResolving)
	src, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		s.log.Warn("split request %s: %s: %v", req.SourceName(), StageFailed, err)
		return nil, err
	}

	return s.run(ctx, src, s.sinkFor(req))
}

// SplitUpload handles a document uploaded to the inbox. Pages go to the event
// container. The outcome is logged; the error is returned for callers that
// want it.
func (s *Service) SplitUpload(ctx context.Context, name string, r io.Reader) (*models.SplitResult, error) {
	s.log.Info("processing upload %s", name)

	src, err := FromReader(name, r)
	if err != nil {
		s.log.Error("Error occurred: %v", err)
		return nil, err
	}

	result, err := s.run(ctx, src, &BlobSink{Store: s.store, Container: s.eventContainer})
	if err != nil {
		s.log.Error("Error occurred: %v", err)
		return result, err
	}
	return result, nil
}

// Preview validates req and resolves its source, then reports the pages and
// output names Split would produce. Nothing is written.
func (s *Service) Preview(ctx context.Context, req models.SplitRequest) (*models.SplitPlan, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	src, err := s.resolver.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	pages, err := s.count(src)
	if err != nil {
		return nil, err
	}

	plan := &models.SplitPlan{
		Source:      src.Name,
		Destination: s.sinkFor(req).String(),
		Pages:       pages,
		Outputs:     make([]string, 0, pages),
	}
	for n := 1; n <= pages; n++ {
		plan.Outputs = append(plan.Outputs, OutputName(src.Name, n))
	}
	return plan, nil
}

func (s *Service) count(src models.SourceDocument) (int, error) {
	if counter, ok := s.splitter.(PageCounter); ok {
		return counter.Count(src)
	}
	pages := 0
	for _, err := range s.splitter.Split(src) {
		if err != nil {
			return 0, err
		}
		pages++
	}
	return pages, nil
}

func (s *Service) sinkFor(req models.SplitRequest) Sink {
	if req.LocalMode() {
		return &LocalSink{FS: s.fs, Dir: req.DestinationDirectoryPath}
	}
	return &BlobSink{Store: s.store, Container: req.DestinationContainer}
}

// run splits src into sink one page at a time: page i+1 is not extracted until
// page i is written. The first error stops the loop.
func (s *Service) run(ctx context.Context, src models.SourceDocument, sink Sink) (*models.SplitResult, error) {
	s.log.Debug("split %s: %s into %s", src.Name, StageSplitting, sink)
	result := &models.SplitResult{Outputs: []string{}}

	if err := sink.Prepare(ctx); err != nil {
		s.log.Error("split %s: %s: %v", src.Name, StageFailed, err)
		return result, err
	}

	for page, err := range s.splitter.Split(src) {
		if err != nil {
			s.log.Error("split %s: %s: %v", src.Name, StageFailed, err)
			return result, err
		}

		name := OutputName(src.Name, page.Number())
		location, err := sink.Write(ctx, name, page.Data)
		if err != nil {
			err = fmt.Errorf("page %d: %w", page.Number(), err)
			s.log.Error("split %s: %s: %v", src.Name, StageFailed, err)
			return result, err
		}

		s.log.Debug("wrote page %d of %s to %s", page.Number(), src.Name, location)
		result.Pages++
		result.Outputs = append(result.Outputs, location)
	}

	s.log.Info("%s %s: %d pages written to %s", MsgCompleted, src.Name, result.Pages, sink)
	s.log.Debug("split %s: %s", src.Name, StageDone)
	return result, nil
}

// StatusOf returns the kind and caller-visible message of err. Messages are
// only exposed for InvalidInput and NotFound.
func StatusOf(err error) (failure.Kind, string) {
	kind := failure.KindOf(err)
	switch kind {
	case failure.InvalidInput, failure.NotFound:
		return kind, failure.MessageOf(err)
	default:
		return kind, ""
	}
}
