package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

// maxBodyBytes bounds a request. hostListing carries a base64 image in its variables.
const maxBodyBytes = 10 << 20

// NewSchema parses the SDL against resolver.
func NewSchema(resolver *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(Schema, resolver,
		graphql.MaxDepth(10),
		graphql.MaxParallelism(10),
	)
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler serves GraphQL over HTTP. The caller identity is expected in the request
// context already.
type Handler struct {
	schema *graphql.Schema
	logger *logger.Logger
}

func NewHandler(schema *graphql.Schema, log *logger.Logger) *Handler {
	return &Handler{schema: schema, logger: log.Named("GraphQLHandler")}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req request
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Rejected undecodable GraphQL request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "request body must be a JSON GraphQL request")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	response := h.schema.Exec(r.Context(), req.Query, req.OperationName, req.Variables)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode GraphQL response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"errors": []map[string]string{{"message": message}},
	})
}
