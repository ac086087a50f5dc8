package app

import "github.com/awmpietro/golang-bayesnet-inference/internal/bayes"

// QueryService is what the transports need from Service.
type QueryService interface {
	Query(network string, q bayes.Query, opts QueryOptions) (float64, *NetworkInfo, error)
	QueryWithTrace(network string, q bayes.Query, opts QueryOptions) (float64, *QueryTrace, *NetworkInfo, error)
}
