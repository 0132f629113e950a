package middleware

import (
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/islandrv/helpdesk/backend/pkg/utils"
)

// Recoverer turns a handler panic into a logged 500 with the usual JSON
// error body. http.ErrAbortHandler is re-raised for net/http to handle.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}

			logrus.WithFields(logrus.Fields{
				"component":  "http",
				"request_id": chimiddleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"panic":      rvr,
				"stack":      string(debug.Stack()),
			}).Error("handler panicked")

			// Upgraded connections have no usable response writer left.
			if r.Header.Get("Connection") != "Upgrade" {
				utils.RespondError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
