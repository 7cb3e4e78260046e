package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// WrapHandle adapts net/http middleware to a single httprouter route,
// keeping the route parameters intact.
func WrapHandle(mw func(http.Handler) http.Handler, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next(w, r, ps)
		})).ServeHTTP(w, r)
	}
}
