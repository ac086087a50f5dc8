package inferdto

import (
	"net/http"

	"github.com/awmpietro/golang-bayesnet-inference/internal/app"
	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
)

// Status maps a query failure onto an HTTP status code. Anything the
// bayes package does not classify, such as a syntax error in the network
// source, is treated as a bad request.
func Status(err error) int {
	switch bayes.Classify(err) {
	case bayes.KindDegenerateEvidence:
		return http.StatusUnprocessableEntity
	case bayes.KindInvariant:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// ErrorBody is the JSON body returned for a failed query.
func ErrorBody(err error, trace *app.QueryTrace, info *app.NetworkInfo) map[string]any {
	body := map[string]any{
		"error":   "query failed",
		"kind":    bayes.Classify(err),
		"details": err.Error(),
	}
	if trace != nil {
		body["trace"] = trace
	}
	if info != nil {
		body["network"] = info
	}
	return body
}
