package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/awmpietro/golang-bayesnet-inference/internal/bayes"
	"github.com/awmpietro/golang-bayesnet-inference/internal/transport/inferdto"
)

const defaultNetwork = `digraph Alarm {
  Burglary   [label="T,F", comment="0.001 0.999"]
  Earthquake [label="T,F", comment="0.002 0.998"]
  Alarm      [label="T,F", comment="0.95 0.05 0.94 0.06 0.29 0.71 0.001 0.999"]
  JohnCalls  [label="T,F", comment="0.9 0.1 0.05 0.95"]
  MaryCalls  [label="T,F", comment="0.7 0.3 0.01 0.99"]
  Burglary -> Alarm
  Earthquake -> Alarm
  Alarm -> JohnCalls
  Alarm -> MaryCalls
}`

type result struct {
	latency time.Duration
	status  int
	err     error
}

func main() {
	url := flag.String("url", "http://localhost:8080/query", "query endpoint URL")
	networkPath := flag.String("network", "", "network file to send (default: built-in alarm network)")
	query := flag.String("query", "Burglary:T", "query as Variable:Outcome")
	evidence := flag.String("evidence", "JohnCalls:T MaryCalls:T", "space separated Variable:Outcome evidence")
	rps := flag.Int("rps", 50, "target requests per second")
	duration := flag.Duration("duration", 60*time.Second, "test duration")
	workers := flag.Int("workers", 50, "number of concurrent workers")
	timeout := flag.Duration("timeout", 5*time.Second, "HTTP client timeout")
	maxP90 := flag.Duration("max-p90", 30*time.Millisecond, "P90 latency the run must stay under")
	flag.Parse()

	if *rps <= 0 || *duration <= 0 || *workers <= 0 {
		fmt.Fprintln(os.Stderr, "rps, duration and workers must be > 0")
		os.Exit(2)
	}

	payload, err := buildPayload(*networkPath, *query, *evidence)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build payload: %v\n", err)
		os.Exit(2)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal payload: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: *timeout}
	jobs := make(chan struct{}, *workers)

	var mu sync.Mutex
	results := make([]result, 0, *rps*int(duration.Seconds())+1)
	record := func(r result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}

	var g errgroup.Group
	for i := 0; i < *workers; i++ {
		g.Go(func() error {
			for range jobs {
				record(send(client, *url, body))
			}
			return nil
		})
	}

	interval := time.Second / time.Duration(*rps)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.Now().Add(*duration)

	for now := range ticker.C {
		if now.After(deadline) {
			break
		}
		jobs <- struct{}{}
	}
	close(jobs)
	_ = g.Wait()

	s, ok := summarize(results)
	if !ok {
		fmt.Fprintln(os.Stderr, "no requests executed")
		os.Exit(1)
	}
	achievedRPS := float64(s.requests) / duration.Seconds()

	fmt.Printf("Load test finished\n")
	fmt.Printf("- target_rps: %d\n", *rps)
	fmt.Printf("- achieved_rps: %.2f\n", achievedRPS)
	fmt.Printf("- duration: %s\n", duration.String())
	fmt.Printf("- requests: %d\n", s.requests)
	fmt.Printf("- 2xx: %d\n", s.success2xx)
	fmt.Printf("- non_2xx: %d\n", s.non2xx)
	fmt.Printf("- errors: %d\n", s.errs)
	fmt.Printf("- avg_ms: %.3f\n", ms(s.avg))
	fmt.Printf("- p50_ms: %.3f\n", ms(s.p50))
	fmt.Printf("- p90_ms: %.3f\n", ms(s.p90))
	fmt.Printf("- p99_ms: %.3f\n", ms(s.p99))

	minRPS := float64(*rps) * 0.98
	if achievedRPS >= minRPS && s.p90 < *maxP90 && s.errs == 0 && s.non2xx == 0 {
		fmt.Printf("PASS: meets %d RPS and P90 < %s\n", *rps, maxP90.String())
		return
	}

	fmt.Println("FAIL: does not meet target (or has request errors)")
	os.Exit(1)
}

// buildPayload reads the network file, if any, and picks its format from
// the extension.
func buildPayload(path, query, evidence string) (inferdto.QueryRequest, error) {
	req := inferdto.QueryRequest{
		Network:  defaultNetwork,
		Format:   string(bayes.FormatDOT),
		Query:    query,
		Evidence: evidence,
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return req, err
		}
		format, err := bayes.DetectFormat(path)
		if err != nil {
			return req, err
		}
		req.Network = string(raw)
		req.Format = string(format)
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	if _, err := req.ToQuery(); err != nil {
		return req, err
	}
	return req, nil
}

func send(client *http.Client, url string, body []byte) result {
	start := time.Now()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return result{latency: time.Since(start), err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{latency: lat, err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	return result{latency: lat, status: resp.StatusCode}
}

type summary struct {
	requests   int
	success2xx int
	non2xx     int
	errs       int
	avg        time.Duration
	p50        time.Duration
	p90        time.Duration
	p99        time.Duration
}

func summarize(results []result) (summary, bool) {
	var s summary
	latencies := make([]time.Duration, 0, len(results))
	for _, r := range results {
		latencies = append(latencies, r.latency)
		switch {
		case r.err != nil:
			s.errs++
		case r.status >= 200 && r.status < 300:
			s.success2xx++
		default:
			s.non2xx++
		}
	}
	if len(latencies) == 0 {
		return s, false
	}

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	s.requests = len(latencies)
	s.avg = average(latencies)
	s.p50 = percentile(latencies, 50)
	s.p90 = percentile(latencies, 90)
	s.p99 = percentile(latencies, 99)
	return s, true
}

func percentile(items []time.Duration, p int) time.Duration {
	if len(items) == 0 {
		return 0
	}
	idx := (len(items) - 1) * p / 100
	return items[idx]
}

func average(items []time.Duration) time.Duration {
	if len(items) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range items {
		total += d
	}
	return total / time.Duration(len(items))
}

func ms(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}
