package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter configures HTTP routes and optional static file serving.
func NewRouter(handler *Handler, staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/upload", handler.Upload).Methods("POST")
	r.HandleFunc("/api/split", handler.StartSplit).Methods("POST")
	r.HandleFunc("/api/jobs", handler.ListJobs).Methods("GET")
	r.HandleFunc("/api/jobs/{id}", handler.GetJob).Methods("GET")
	r.HandleFunc("/api/download/{id}/{filename}", handler.Download).Methods("GET")
	if staticDir != "" {
		r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	}
	return r
}
