package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/awmpietro/golang-bayesnet-inference/internal/app"
	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes/cache"
	"github.com/awmpietro/golang-bayesnet-inference/internal/config"
	"github.com/awmpietro/golang-bayesnet-inference/internal/transport/lambdatransport"
)

func main() {
	cfg := config.Load()

	format, err := bayes.ParseFormat(cfg.DefaultFormat)
	if err != nil {
		log.Fatalf("BAYES_DEFAULT_FORMAT: %v", err)
	}

	compiler := bayes.NewCompiler(bayes.WithTableTolerance(cfg.TableTolerance))
	stepObserver := bayes.NewAsyncStepObserver(bayes.NewStepLogger(log.Default()), cfg.ObsBuffer)
	defer stepObserver.Close()
	engine := bayes.NewEngine(bayes.WithStepObserver(stepObserver))
	c := cache.NewInMemory(cfg.CacheMaxItems)

	svc := app.NewService(compiler, engine, c, app.WithDefaultFormat(format))
	h := lambdatransport.NewHandler(svc)

	lambda.Start(h.Query)
}
