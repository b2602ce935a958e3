package middleware

import (
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// routine payloads are small, anything left beyond this is not worth reading
const maxDrainBytes = 256 << 10

// DrainAndCloseRequest drains what the handler left unread from the request body, then closes it,
// so the connection can be reused.
func DrainAndCloseRequest() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Body == nil {
				return
			}
			if n, err := io.Copy(io.Discard, io.LimitReader(r.Body, maxDrainBytes)); err != nil {
				log.Tracef("drain request body of %s %s after %d bytes: %s", r.Method, r.URL.Path, n, err)
			}
			_ = r.Body.Close()
		})
	}
}
