package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/awmpietro/golang-bayesnet-inference/internal/app"
	"github.com/awmpietro/golang-bayesnet-inference/internal/transport/inferdto"
)

type Handler struct {
	svc app.QueryService
}

func NewHandler(svc app.QueryService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var in inferdto.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json", "details": err.Error()})
		return
	}
	if err := in.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request", "details": err.Error()})
		return
	}

	q, err := in.ToQuery()
	if err != nil {
		writeJSON(w, inferdto.Status(err), inferdto.ErrorBody(err, nil, nil))
		return
	}
	opts, err := in.Options()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, inferdto.ErrorBody(err, nil, nil))
		return
	}

	if in.Debug {
		p, trace, info, err := h.svc.QueryWithTrace(in.Network, q, opts)
		if err != nil {
			writeJSON(w, inferdto.Status(err), inferdto.ErrorBody(err, trace, info))
			return
		}
		writeJSON(w, http.StatusOK, inferdto.QueryResponse{Probability: p, Query: q.String(), Network: info, Trace: trace})
		return
	}

	p, info, err := h.svc.Query(in.Network, q, opts)
	if err != nil {
		writeJSON(w, inferdto.Status(err), inferdto.ErrorBody(err, nil, info))
		return
	}
	writeJSON(w, http.StatusOK, inferdto.QueryResponse{Probability: p, Query: q.String(), Network: info})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
