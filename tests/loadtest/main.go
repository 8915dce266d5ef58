package main

import (
	"bytes"
	"fmt"
	json "github.com/goccy/go-json"
	"io"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numShows     = 20
	numEpisodes  = 8
)

var schemas = []string{"a", "b"}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

func main() {
	fmt.Println("=== SPC Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Shows: %d | Episodes per show: %d\n\n", numShows, numEpisodes)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Phase 1: valid documents only
	fmt.Println("\n--- Phase 1: Valid documents (POST /validate) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doValidate(rng, false)
	})

	// Phase 2: mixed traffic
	fmt.Println("\n--- Phase 2: Mixed load (50% valid, 25% invalid, 15% normalize, 10% stats) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.50:
			return doValidate(rng, false)
		case r < 0.75:
			return doValidate(rng, true)
		case r < 0.90:
			return doNormalize(rng)
		default:
			return doGetStats()
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

// buildDocument produces a random response for schema. When broken is set,
// one constraint is violated so the daemon must answer 422.
func buildDocument(rng *rand.Rand, schema string, broken bool) map[string]interface{} {
	results := make(map[string]interface{}, numShows)
	shows := rng.Intn(numShows) + 1
	for i := 0; i < shows; i++ {
		key := fmt.Sprintf("show_%d", i)
		if rng.Float64() < 0.1 {
			results[key] = map[string]interface{}{"error": "podcast not found"}
			continue
		}
		episodes := make(map[string]interface{}, numEpisodes)
		n := rng.Intn(numEpisodes) + 1
		for e := 0; e < n; e++ {
			histogram := make([]float64, rng.Intn(30)+1)
			for h := range histogram {
				histogram[h] = 100 * rng.Float64()
			}
			episode := map[string]interface{}{
				"totalListeners":    rng.Intn(10000),
				"listenerHistogram": histogram,
				"dailyListeners": map[string]int{
					"2024-03-01": rng.Intn(500),
					"2024-03-02": rng.Intn(500),
				},
			}
			if schema == "a" {
				episode["listenerHistogramResolution"] = []string{"1m", "30s"}[rng.Intn(2)]
			} else {
				episode["listenerHistogramResolutionSeconds"] = rng.Intn(60) + 1
			}
			episodes[fmt.Sprintf("ep-%d", e)] = episode
		}
		results[key] = map[string]interface{}{
			"asOf":           "2024-03-02T12:00:00Z",
			"followerCount":  rng.Intn(50000),
			"totalListeners": rng.Intn(100000),
			"episodes":       episodes,
		}
	}
	if broken {
		results["show_broken"] = map[string]interface{}{
			"asOf":          "2024-03-02 12:00",
			"followerCount": -1,
		}
	}
	return map[string]interface{}{"results": results}
}

func post(endpoint string, schema string, body map[string]interface{}, wantStatus int) result {
	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+endpoint+"?schema="+schema, "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	name := "POST " + endpoint
	if err != nil {
		return result{name, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{name, resp.StatusCode, lat, resp.StatusCode != wantStatus}
}

func doValidate(rng *rand.Rand, broken bool) result {
	schema := schemas[rng.Intn(len(schemas))]
	want := http.StatusOK
	if broken {
		want = http.StatusUnprocessableEntity
	}
	return post("/validate", schema, buildDocument(rng, schema, broken), want)
}

func doNormalize(rng *rand.Rand) result {
	schema := schemas[rng.Intn(len(schemas))]
	return post("/normalize", schema, buildDocument(rng, schema, false), http.StatusOK)
}

func doGetStats() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/stats")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /stats", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /stats", resp.StatusCode, lat, resp.StatusCode != 200}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}
