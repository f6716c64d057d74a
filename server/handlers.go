package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Epistemic-Technology/pdf-splitter/internal/events"
	"github.com/Epistemic-Technology/pdf-splitter/internal/failure"
	"github.com/Epistemic-Technology/pdf-splitter/internal/logger"
	"github.com/Epistemic-Technology/pdf-splitter/internal/operations"
	"github.com/Epistemic-Technology/pdf-splitter/internal/storage"
	"github.com/Epistemic-Technology/pdf-splitter/models"
)

const (
	maxRequestBytes = 64 << 20
	maxEventBytes   = 1 << 20
)

const msgInvalidEvents = "Invalid event payload."

// Splitter runs both kinds of invocation
type Splitter interface {
	Split(ctx context.Context, req models.SplitRequest) (*models.SplitResult, error)
	SplitUpload(ctx context.Context, name string, r io.Reader) (*models.SplitResult, error)
}

var _ Splitter = (*operations.Service)(nil)

// APIOptions configures the HTTP API
type APIOptions struct {
	Service Splitter
	// Store serves uploads announced by BlobCreated events; nil disables them
	Store storage.ObjectStore
	// InboxContainer is the only container whose uploads are split
	InboxContainer string
	Log            logger.Logger
}

// API serves the HTTP entry points
type API struct {
	svc   Splitter
	store storage.ObjectStore
	inbox string
	log   logger.Logger
}

// NewAPI creates the HTTP API
func NewAPI(opts APIOptions) *API {
	log := opts.Log
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &API{
		svc:   opts.Service,
		store: opts.Store,
		inbox: opts.InboxContainer,
		log:   log,
	}
}

func (a *API) indexHandler(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "PDF Splitter API")
}

func (a *API) healthHandler(w http.ResponseWriter, r *http.Request) {
	respondWithText(w, http.StatusOK, "ok")
}

// splitHandler runs an explicit split request. Once the body is decoded the
// split runs to completion even if the client goes away.
func (a *API) splitHandler(w http.ResponseWriter, r *http.Request) {
	a.log.Info("Received split request, content-size: %d, content-type is %s", r.ContentLength, r.Header.Get("Content-Type"))

	req, err := operations.DecodeRequest(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		a.responseWithFailure(w, err)
		return
	}

	if _, err := a.svc.Split(context.WithoutCancel(r.Context()), req); err != nil {
		a.responseWithFailure(w, err)
		return
	}

	respondWithText(w, http.StatusOK, operations.MsgCompleted)
}

// eventsHandler is the Event Grid webhook. Split failures have no response
// channel: they are logged and the delivery is acknowledged.
func (a *API) eventsHandler(w http.ResponseWriter, r *http.Request) {
	evs, err := events.Parse(http.MaxBytesReader(w, r.Body, maxEventBytes))
	if err != nil {
		a.log.Warn("rejected event delivery: %v", err)
		respondWithText(w, http.StatusBadRequest, msgInvalidEvents)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	for _, ev := range evs {
		switch ev.EventType {
		case events.SubscriptionValidationEvent:
			data, err := ev.ValidationData()
			if err != nil {
				a.log.Warn("rejected subscription validation: %v", err)
				respondWithText(w, http.StatusBadRequest, msgInvalidEvents)
				return
			}
			a.log.Info("validated event subscription for topic %s", ev.Topic)
			respondWithJSON(w, http.StatusOK, events.ValidationResponse{ValidationResponse: data.ValidationCode})
			return

		case events.BlobCreatedEvent:
			a.splitCreatedBlob(ctx, ev)

		default:
			a.log.Debug("ignoring event %s of type %s", ev.ID, ev.EventType)
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (a *API) splitCreatedBlob(ctx context.Context, ev events.Event) {
	container, name, ok := events.BlobLocation(ev.Subject)
	if !ok {
		a.log.Debug("ignoring event %s with subject %s", ev.ID, ev.Subject)
		return
	}
	if container != a.inbox {
		a.log.Debug("ignoring upload %s outside %s", storage.ObjectLocation(container, name), a.inbox)
		return
	}
	if a.store == nil {
		a.log.Error("Error occurred: storage is not configured, cannot read %s", storage.ObjectLocation(container, name))
		return
	}

	data, err := a.store.Download(ctx, container, name)
	if err != nil {
		a.log.Error("Error occurred: %v", err)
		return
	}

	// SplitUpload logs its own outcome
	_, _ = a.svc.SplitUpload(ctx, name, bytes.NewReader(data))
}

func (a *API) responseWithFailure(w http.ResponseWriter, err error) {
	kind, message := operations.StatusOf(err)
	switch kind {
	case failure.InvalidInput:
		respondWithText(w, http.StatusBadRequest, message)
	case failure.NotFound:
		respondWithText(w, http.StatusNotFound, message)
	default:
		a.log.Error("Error occurred: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func respondWithText(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, message)
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
