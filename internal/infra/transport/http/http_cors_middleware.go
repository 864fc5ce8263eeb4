package http

import (
	"net/http"
	"strings"
)

// CORSMiddleware allows cross-origin reads of public resources, e.g. by social
// media crawlers fetching card images. Preflight requests are answered directly.
func CORSMiddleware(next http.Handler, methods ...string) http.Handler {
	allowMethods := strings.Join(append(methods, http.MethodOptions), ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", allowMethods)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		next.ServeHTTP(w, r)
	})
}
