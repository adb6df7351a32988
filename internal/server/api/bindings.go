package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/store"
)

// BindingHandler handles HTTP requests for gesture key bindings.
type BindingHandler struct {
	store    *store.Store
	config   *config.Config
	onChange func(map[gesture.Label]string)
}

// NewBindingHandler creates a BindingHandler. onChange, if set, receives the
// effective bindings after every successful change.
func NewBindingHandler(s *store.Store, cfg *config.Config, onChange func(map[gesture.Label]string)) *BindingHandler {
	return &BindingHandler{store: s, config: cfg, onChange: onChange}
}

type bindingResponse struct {
	Gesture string `json:"gesture"`
	Key     string `json:"key"`
	Source  string `json:"source"`
}

type listBindingsResponse struct {
	Bindings []bindingResponse `json:"bindings"`
}

type setBindingRequest struct {
	Key string `json:"key"`
}

// ServeHTTP routes /api/bindings and /api/bindings/{gesture}.
func (h *BindingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/bindings")
	name = strings.TrimPrefix(name, "/")

	if name == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w)
		return
	}

	label, err := gesture.ParseLabel(name)
	if err != nil || !label.OneShot() {
		writeError(w, http.StatusBadRequest, "Gesture cannot be bound")
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.set(w, r, label)
	case http.MethodDelete:
		h.delete(w, label)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *BindingHandler) effective() (map[gesture.Label]string, map[string]string, error) {
	saved, err := h.store.Bindings().Map()
	if err != nil {
		return nil, nil, err
	}
	merged, _ := h.config.MergeBindings(saved)
	return merged, saved, nil
}

// list handles GET /api/bindings.
func (h *BindingHandler) list(w http.ResponseWriter) {
	merged, saved, err := h.effective()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bindings")
		return
	}

	response := listBindingsResponse{Bindings: make([]bindingResponse, 0, len(merged))}
	for label, key := range merged {
		source := "config"
		if _, ok := saved[string(label)]; ok {
			source = "saved"
		}
		response.Bindings = append(response.Bindings, bindingResponse{
			Gesture: string(label),
			Key:     key,
			Source:  source,
		})
	}
	sort.Slice(response.Bindings, func(i, j int) bool {
		return response.Bindings[i].Gesture < response.Bindings[j].Gesture
	})

	writeJSON(w, http.StatusOK, response)
}

// set handles PUT /api/bindings/{gesture}.
func (h *BindingHandler) set(w http.ResponseWriter, r *http.Request, label gesture.Label) {
	var req setBindingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	key, err := input.ParseKey(req.Key)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Bindings().Set(string(label), string(key)); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save binding")
		return
	}
	h.notify()

	writeJSON(w, http.StatusOK, bindingResponse{Gesture: string(label), Key: string(key), Source: "saved"})
}

// delete handles DELETE /api/bindings/{gesture}, reverting to the configured key.
func (h *BindingHandler) delete(w http.ResponseWriter, label gesture.Label) {
	err := h.store.Bindings().Delete(string(label))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete binding")
		return
	}
	h.notify()

	w.WriteHeader(http.StatusNoContent)
}

func (h *BindingHandler) notify() {
	if h.onChange == nil {
		return
	}
	merged, _, err := h.effective()
	if err != nil {
		log.WithError(err).Warn("reload bindings")
		return
	}
	h.onChange(merged)
}
