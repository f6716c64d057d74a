package server

import (
	"net/http"
	"time"
)

// statusWriter records the status and size of a response
type statusWriter struct {
	http.ResponseWriter
	status int
	length int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.length += n
	return n, err
}

// loggerHandler logs the HTTP requests
func (a *API) loggerHandler(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := statusWriter{ResponseWriter: w}
		inner.ServeHTTP(&sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		a.log.Info("%s %s %s %s => %d %d bytes",
			r.Method,
			r.RequestURI,
			name,
			time.Since(start),
			sw.status,
			sw.length,
		)
	})
}
