package verify

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	chimd "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Middleware rejects requests whose header tag does not match the body. The
// body is buffered, checked, and restored, so downstream handlers only ever
// read verified bytes. maxBody <= 0 means no limit.
func Middleware(v *Verifier, header string, maxBody int64, log *zap.Logger) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultHeader
	}
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var src io.Reader = r.Body
			if maxBody > 0 {
				src = http.MaxBytesReader(w, r.Body, maxBody)
			}
			body, err := io.ReadAll(src)
			r.Body.Close()
			if err != nil {
				var tooBig *http.MaxBytesError
				if errors.As(err, &tooBig) {
					http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
					return
				}
				http.Error(w, "Bad Request", http.StatusBadRequest)
				return
			}

			if !v.Verify(body, r.Header.Get(header)) {
				log.Warn("webhook signature rejected",
					zap.String("requestId", chimd.GetReqID(r.Context())),
					zap.String("remoteAddr", r.RemoteAddr),
					zap.Bool("tagPresent", r.Header.Get(header) != ""),
					zap.String("digest", v.name),
				)
				http.Error(w, "Shared secret mismatch.", http.StatusForbidden)
				return
			}

			r.Body = io.NopCloser(bytes.NewReader(body))
			next.ServeHTTP(w, r)
		})
	}
}
