package inferdto

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/awmpietro/golang-bayesnet-inference/internal/app"
	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes/evidence"
)

var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New()
	_ = requestValidate.RegisterValidation("netformat", validateFormat)
}

func validateFormat(fl validator.FieldLevel) bool {
	_, err := bayes.ParseFormat(fl.Field().String())
	return err == nil
}

// QueryRequest is the JSON body of a query. Evidence uses the
// "Variable:Outcome ..." form and EvidenceExpr the expression form;
// both may be given and are concatenated in that order.
type QueryRequest struct {
	Network      string `json:"network" validate:"required"`
	Format       string `json:"format,omitempty" validate:"omitempty,netformat"`
	Query        string `json:"query" validate:"required"`
	Evidence     string `json:"evidence,omitempty"`
	EvidenceExpr string `json:"evidence_expr,omitempty"`
	Order        string `json:"order,omitempty"`
	Debug        bool   `json:"debug,omitempty"`
}

func (r *QueryRequest) Validate() error {
	return requestValidate.Struct(r)
}

func (r QueryRequest) ToQuery() (bayes.Query, error) {
	variable, outcome, err := bayes.ParseQuery(r.Query)
	if err != nil {
		return bayes.Query{}, err
	}
	pairs, err := bayes.ParseEvidence(r.Evidence)
	if err != nil {
		return bayes.Query{}, err
	}
	exprPairs, err := evidence.Parse(r.EvidenceExpr)
	if err != nil {
		return bayes.Query{}, err
	}
	order, err := bayes.ParseOrder(r.Order)
	if err != nil {
		return bayes.Query{}, err
	}

	return bayes.Query{
		Variable: variable,
		Outcome:  outcome,
		Evidence: append(pairs, exprPairs...),
		Order:    order,
	}, nil
}

func (r QueryRequest) Options() (app.QueryOptions, error) {
	if strings.TrimSpace(r.Format) == "" {
		return app.QueryOptions{}, nil
	}
	f, err := bayes.ParseFormat(r.Format)
	if err != nil {
		return app.QueryOptions{}, err
	}
	return app.QueryOptions{Format: f}, nil
}

type QueryResponse struct {
	Probability float64          `json:"probability"`
	Query       string           `json:"query"`
	Network     *app.NetworkInfo `json:"network,omitempty"`
	Trace       *app.QueryTrace  `json:"trace,omitempty"`
}
