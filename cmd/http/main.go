package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/awmpietro/golang-bayesnet-inference/internal/app"
	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes/cache"
	"github.com/awmpietro/golang-bayesnet-inference/internal/config"
	"github.com/awmpietro/golang-bayesnet-inference/internal/metrics"
	"github.com/awmpietro/golang-bayesnet-inference/internal/transport/httptransport"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	format, err := bayes.ParseFormat(cfg.DefaultFormat)
	if err != nil {
		log.Fatalf("BAYES_DEFAULT_FORMAT: %v", err)
	}

	observers := bayes.MultiStepObserver{bayes.NewStepLogger(log.Default())}
	if cfg.Metrics {
		observers = append(observers, metrics.NewPrometheusStepObserver(prometheus.DefaultRegisterer))
	}
	stepObserver := bayes.NewAsyncStepObserver(observers, cfg.ObsBuffer)

	compiler := bayes.NewCompiler(bayes.WithTableTolerance(cfg.TableTolerance))
	engine := bayes.NewEngine(bayes.WithStepObserver(stepObserver))
	c := cache.NewInMemory(cfg.CacheMaxItems)

	svc := app.NewService(compiler, engine, c, app.WithDefaultFormat(format))
	h := httptransport.NewHandler(svc)

	mux := http.NewServeMux()
	mux.HandleFunc("/query", logRequests(h.Query))
	if cfg.Metrics {
		mux.Handle("/metrics", promhttp.Handler())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	log.Printf("listening on %s", cfg.HTTPAddr)
	if err := serve(ctx, srv, stepObserver); err != nil {
		log.Fatal(err)
	}
	log.Printf("stopped, %d step events dropped", stepObserver.Dropped())
}

// serve runs srv until ctx is cancelled or the listener fails, then
// shuts it down and flushes the step observer. The observer is closed
// on every return path.
func serve(ctx context.Context, srv *http.Server, observer *bayes.AsyncStepObserver) error {
	defer observer.Close()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func logRequests(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			log.Printf("query request processed in %s (bodyBytes=%d)", time.Since(start), r.ContentLength)
		}()
		next(w, r)
	}
}
