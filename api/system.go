package api

import (
	"fmt"
	"net/http"

	"github.com/coderr-app/backend/pkg/repository"
)

type SystemHandler struct {
	statsRepo repository.StatsRepo
}

func NewSystemHandler(sr repository.StatsRepo) *SystemHandler {
	return &SystemHandler{statsRepo: sr}
}

func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"status":"ok","service":"coderr"}`)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","buildTime":"%s"}`, version, buildTime)
	}
}

// BaseInfoHandler serves the public platform statistics.
func (h *SystemHandler) BaseInfoHandler(w http.ResponseWriter, r *http.Request) {
	info, err := h.statsRepo.BaseInfo(r.Context())
	if err != nil {
		serverError(w, "error fetching base info")
		return
	}

	writeJSON(w, info, http.StatusOK)
}
