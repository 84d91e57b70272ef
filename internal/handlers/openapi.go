package handlers

import (
	_ "embed"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"gopkg.in/yaml.v3"
)

//go:embed openapi.yaml
var openAPIDocument []byte

// OpenAPIHandler serves the embedded OpenAPI document as YAML and JSON
type OpenAPIHandler struct {
	jsonOnce sync.Once
	jsonDoc  []byte
	jsonErr  error
}

// NewOpenAPIHandler creates a new OpenAPI handler
func NewOpenAPIHandler() *OpenAPIHandler {
	return &OpenAPIHandler{}
}

// RegisterRoutes registers OpenAPI routes
func (h *OpenAPIHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/openapi.yaml", h.ServeYAML).Methods("GET")
	r.HandleFunc("/api/openapi.json", h.ServeJSON).Methods("GET")
}

// ServeYAML serves the OpenAPI document in YAML format
func (h *OpenAPIHandler) ServeYAML(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	_, _ = w.Write(openAPIDocument)
}

// ServeJSON serves the OpenAPI document converted to JSON
func (h *OpenAPIHandler) ServeJSON(w http.ResponseWriter, r *http.Request) {
	h.jsonOnce.Do(func() {
		var doc map[string]any
		if h.jsonErr = yaml.Unmarshal(openAPIDocument, &doc); h.jsonErr != nil {
			return
		}
		h.jsonDoc, h.jsonErr = json.Marshal(doc)
	})
	if h.jsonErr != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to render OpenAPI document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(h.jsonDoc)
}
