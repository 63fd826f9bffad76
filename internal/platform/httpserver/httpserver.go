// Package httpserver builds the HTTP server with timeouts suited to the
// small JSON payloads this service exchanges.
package httpserver

import (
	"net/http"
	"time"
)

// New builds the server. Request bodies top out at one 128-float descriptor,
// so the timeouts are tight.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
