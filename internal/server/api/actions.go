package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/mudra/internal/store"
)

// maxHistory caps the limit query parameter.
const maxHistory = 500

// ActionHandler serves the history of emitted input actions.
type ActionHandler struct {
	store *store.Store
}

// NewActionHandler creates a new ActionHandler with the given store.
func NewActionHandler(s *store.Store) *ActionHandler {
	return &ActionHandler{store: s}
}

type listActionsResponse struct {
	Actions []*store.ActionRecord `json:"actions"`
	Total   int                   `json:"total"`
}

// ServeHTTP handles GET /api/actions?limit=N, newest first.
func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistory)
	}

	records, err := h.store.Actions().ListRecent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list actions")
		return
	}
	total, err := h.store.Actions().Count()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count actions")
		return
	}

	if records == nil {
		records = []*store.ActionRecord{}
	}
	writeJSON(w, http.StatusOK, listActionsResponse{Actions: records, Total: total})
}
