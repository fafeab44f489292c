package http

import (
	"log"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries a per-request id. Clients may supply one; the
// server generates it otherwise and echoes it on the response.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// RequestLogger writes one line per request with its id, the calling
// account, the response status and latency.
func RequestLogger(next http.Handler, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		account := r.Header.Get(AccountHeader)
		if account == "" {
			account = "-"
		}
		logger.Printf(
			"request id=%s method=%s path=%s account=%s status=%d bytes=%d duration=%s",
			id,
			r.Method,
			r.URL.Path,
			account,
			rec.status,
			rec.bytes,
			time.Since(start),
		)
	})
}

// RecoverPanic turns a handler panic into a JSON 500 and logs the stack.
// Install it inside RequestLogger so the line carries the request id.
func RecoverPanic(next http.Handler, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if recovered == http.ErrAbortHandler {
				panic(recovered)
			}
			logger.Printf(
				"panic recovered id=%s method=%s path=%s panic=%v stack=%s",
				r.Header.Get(RequestIDHeader),
				r.Method,
				r.URL.Path,
				recovered,
				strings.TrimSpace(string(debug.Stack())),
			)
			writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.bytes += n
	return n, err
}
