// Package home routes the bare root path. The product has no public
// site; visitors land on the login page and signed-in users go straight
// to their dashboard.
package home

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dalemusser/leadcentral/internal/app/system/authz"
)

// Routes returns a chi.Router with the root route mounted.
func Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", Index)
	return r
}

// Index sends visitors to the right entry point.
func Index(w http.ResponseWriter, r *http.Request) {
	if authz.IsLoggedIn(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
