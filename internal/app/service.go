package app

import (
	"fmt"
	"strings"

	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes/cache"
)

type Compiler interface {
	Compile(format bayes.Format, source string) (*bayes.Network, error)
}

type Engine interface {
	Run(n *bayes.Network, q bayes.Query) (float64, error)
}

type TraceEngine interface {
	RunWithTrace(n *bayes.Network, q bayes.Query) (float64, *bayes.EliminationTrace, error)
}

type DistributionEngine interface {
	Distribution(n *bayes.Network, q bayes.Query) ([]float64, error)
}

type Cache interface {
	GetOrCompute(key string, fn func() (*bayes.Network, error)) (*bayes.Network, error)
}

type QueryTrace = bayes.EliminationTrace

// QueryOptions carries per-call settings. An empty Format means the
// service default.
type QueryOptions struct {
	Format bayes.Format
}

type NetworkInfo struct {
	Hash      string       `json:"hash"`
	Format    bayes.Format `json:"format"`
	Variables int          `json:"variables"`
}

type Service struct {
	compiler      Compiler
	engine        Engine
	cache         Cache
	defaultFormat bayes.Format
}

type ServiceOption func(*Service)

func WithDefaultFormat(f bayes.Format) ServiceOption {
	return func(s *Service) {
		if f != "" {
			s.defaultFormat = f
		}
	}
}

func NewService(compiler Compiler, engine Engine, c Cache, opts ...ServiceOption) *Service {
	s := &Service{
		compiler:      compiler,
		engine:        engine,
		cache:         c,
		defaultFormat: bayes.FormatXMLBIF,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query compiles the network (cached by source) and returns
// P(q.Variable=q.Outcome | q.Evidence).
func (s *Service) Query(network string, q bayes.Query, opts QueryOptions) (float64, *NetworkInfo, error) {
	n, info, err := s.load(network, opts)
	if err != nil {
		return 0, info, err
	}

	p, err := s.engine.Run(n, q)
	if err != nil {
		return 0, info, err
	}
	return p, info, nil
}

// QueryWithTrace is Query plus the elimination trace. When the engine
// cannot trace, the answer comes back with a nil trace.
func (s *Service) QueryWithTrace(network string, q bayes.Query, opts QueryOptions) (float64, *QueryTrace, *NetworkInfo, error) {
	n, info, err := s.load(network, opts)
	if err != nil {
		return 0, nil, info, err
	}

	traceEngine, ok := s.engine.(TraceEngine)
	if !ok {
		p, err := s.engine.Run(n, q)
		if err != nil {
			return 0, nil, info, err
		}
		return p, nil, info, nil
	}

	p, trace, err := traceEngine.RunWithTrace(n, q)
	if err != nil {
		return 0, trace, info, err
	}
	return p, trace, info, nil
}

// Distribution returns the posterior over every outcome of q.Variable
// together with the outcome labels.
func (s *Service) Distribution(network string, q bayes.Query, opts QueryOptions) ([]string, []float64, *NetworkInfo, error) {
	n, info, err := s.load(network, opts)
	if err != nil {
		return nil, nil, info, err
	}

	distEngine, ok := s.engine.(DistributionEngine)
	if !ok {
		return nil, nil, info, fmt.Errorf("engine %T cannot compute distributions", s.engine)
	}
	dist, err := distEngine.Distribution(n, q)
	if err != nil {
		return nil, nil, info, err
	}
	v, _ := n.Variable(q.Variable)
	return append([]string(nil), v.Outcomes...), dist, info, nil
}

// Compile validates a network without querying it.
func (s *Service) Compile(network string, opts QueryOptions) (*bayes.Network, *NetworkInfo, error) {
	return s.load(network, opts)
}

func (s *Service) load(source string, opts QueryOptions) (*bayes.Network, *NetworkInfo, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil, fmt.Errorf("%w: network is required", bayes.ErrInvalidNetwork)
	}
	format := opts.Format
	if format == "" {
		format = s.defaultFormat
	}

	key := string(format) + "\n" + source
	info := &NetworkInfo{Hash: cache.Hash(key), Format: format}

	compile := func() (*bayes.Network, error) {
		return s.compiler.Compile(format, source)
	}

	var (
		n   *bayes.Network
		err error
	)
	if s.cache != nil {
		n, err = s.cache.GetOrCompute(key, compile)
	} else {
		n, err = compile()
	}
	if err != nil {
		return nil, info, err
	}

	info.Variables = n.Len()
	return n, info, nil
}
