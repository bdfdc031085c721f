package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/PaperRAG/internal/adapter"
)

func (h *Handler) writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// headers are already out, nothing left to tell the client
		h.logger.Error("Error encoding response", "error", err)
	}
}

func (h *Handler) WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	h.writeJsonResponse(w, httpCode, adapter.BadRequest(httpCode, message))
}

// WriteErrorResponse is used by the middleware, which has no Handler.
func WriteErrorResponse(w http.ResponseWriter, httpCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	_ = json.NewEncoder(w).Encode(adapter.BadRequest(httpCode, message))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, into interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(into)
}

func getTargetDirectory(dir string) (string, error) {
	if !filepath.IsAbs(dir) {
		root, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(root, dir)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
