package lambdatransport

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"github.com/awmpietro/golang-bayesnet-inference/internal/app"
	"github.com/awmpietro/golang-bayesnet-inference/internal/transport/inferdto"
)

type Handler struct {
	svc app.QueryService
}

func NewHandler(svc app.QueryService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Query(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	body, err := readBody(req)
	if err != nil {
		return jsonResp(http.StatusBadRequest, map[string]any{"error": "invalid body", "details": err.Error()}), nil
	}

	var in inferdto.QueryRequest
	if err := json.Unmarshal(body, &in); err != nil {
		return jsonResp(http.StatusBadRequest, map[string]any{"error": "invalid json", "details": err.Error()}), nil
	}
	if err := in.Validate(); err != nil {
		return jsonResp(http.StatusBadRequest, map[string]any{"error": "invalid request", "details": err.Error()}), nil
	}

	q, err := in.ToQuery()
	if err != nil {
		return jsonResp(inferdto.Status(err), inferdto.ErrorBody(err, nil, nil)), nil
	}
	opts, err := in.Options()
	if err != nil {
		return jsonResp(http.StatusBadRequest, inferdto.ErrorBody(err, nil, nil)), nil
	}

	if in.Debug {
		p, trace, info, err := h.svc.QueryWithTrace(in.Network, q, opts)
		if err != nil {
			return jsonResp(inferdto.Status(err), inferdto.ErrorBody(err, trace, info)), nil
		}
		return jsonResp(http.StatusOK, inferdto.QueryResponse{Probability: p, Query: q.String(), Network: info, Trace: trace}), nil
	}

	p, info, err := h.svc.Query(in.Network, q, opts)
	if err != nil {
		return jsonResp(inferdto.Status(err), inferdto.ErrorBody(err, nil, info)), nil
	}
	return jsonResp(http.StatusOK, inferdto.QueryResponse{Probability: p, Query: q.String(), Network: info}), nil
}

func readBody(req events.APIGatewayV2HTTPRequest) ([]byte, error) {
	if req.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(req.Body)
	}
	return []byte(req.Body), nil
}

func jsonResp(status int, body any) events.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    map[string]string{"content-type": "application/json"},
		Body:       string(b),
	}
}
