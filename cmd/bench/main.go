// Command bench runs a synthetic workload against the cache and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"strconv"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/cachecore/cache"
	"github.com/IvanBrykalov/cachecore/internal/config"
	pmet "github.com/IvanBrykalov/cachecore/metrics/prom"
	"github.com/IvanBrykalov/cachecore/policy/twoq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	// ---- Flags (override the profile when set) ----
	var (
		profile = flag.String("profile", "", "YAML workload profile; empty = built-in defaults")

		capacity = flag.Int64("cap", 0, "maximum entries")
		shards   = flag.Int("shards", 0, "number of shards (0=auto)")
		policy   = flag.String("policy", "", "eviction policy: lru | 2q")
		ttl      = flag.Duration("ttl", 0, "expire after write (0 = never)")

		workers  = flag.Int("workers", 0, "number of worker goroutines")
		duration = flag.Duration("duration", 0, "benchmark duration")
		readPct  = flag.Int("reads", 0, "read percentage [0..100]")
		loadPct  = flag.Int("loads", 0, "percentage of reads that use a loader [0..100]")
		latency  = flag.Duration("load_latency", 0, "simulated loader latency")

		keys    = flag.Int("keys", 0, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 0, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed (default: profile seed, else now)")
		preload = flag.Int("preload", 0, "preload entries (0 = cap/2)")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060)")
		metricsAddr = flag.String("http", "", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	p := config.Default()
	if *profile != "" {
		var err error
		if p, err = config.Load(*profile); err != nil {
			log.Fatalf("profile: %v", err)
		}
	}
	if p.Workload.Seed == 0 {
		p.Workload.Seed = *seed
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "cap":
			p.Cache.MaximumSize = *capacity
		case "shards":
			p.Cache.Shards = *shards
		case "policy":
			p.Cache.Policy = *policy
		case "ttl":
			p.Cache.ExpireAfterWrite = *ttl
		case "workers":
			p.Workload.Workers = *workers
		case "duration":
			p.Workload.Duration = *duration
		case "reads":
			p.Workload.ReadPct = *readPct
		case "loads":
			p.Workload.LoadPct = *loadPct
		case "load_latency":
			p.Workload.LoadLatency = *latency
		case "keys":
			p.Workload.Keys = *keys
		case "zipf_s":
			p.Workload.ZipfS = *zipfS
		case "zipf_v":
			p.Workload.ZipfV = *zipfV
		case "seed":
			p.Workload.Seed = *seed
		case "preload":
			p.Workload.Preload = *preload
		case "pprof":
			p.HTTP.Pprof = *pprofAddr
		case "http":
			p.HTTP.Metrics = *metricsAddr
		}
	})
	if err := p.Validate(); err != nil {
		log.Fatalf("profile: %v", err)
	}

	// ---- pprof server (on DefaultServeMux) ----
	if p.HTTP.Pprof != "" {
		go func() {
			log.Printf("pprof: serving at %s", p.HTTP.Pprof)
			log.Println(http.ListenAndServe(p.HTTP.Pprof, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "cachecore", "bench", nil)
	if p.HTTP.Metrics != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Printf("metrics: serving at %s", p.HTTP.Metrics)
			log.Println(http.ListenAndServe(p.HTTP.Metrics, nil))
		}()
	}

	// ---- Build cache ----
	opt := cache.Options[string, string]{
		MaximumSize:      p.Cache.MaximumSize,
		Shards:           p.Cache.Shards,
		ExpireAfterWrite: p.Cache.ExpireAfterWrite,
		Metrics:          metrics,
	}
	if p.Cache.Policy == "2q" {
		// 2Q queues are per shard
		n := p.Cache.Shards
		if n <= 0 {
			n = 64
		}
		perShard := int(p.Cache.MaximumSize)/n + 1
		opt.Policy = twoq.New[string, string](perShard/4, perShard/2)
	}
	c := cache.New(opt)
	defer func() { _ = c.Close() }()

	// ---- Preload to get a realistic hit-rate ----
	initial := make(map[string]string, p.PreloadCount())
	for i := range p.PreloadCount() {
		initial["k:"+strconv.Itoa(i)] = "v" + strconv.Itoa(i)
	}
	if err := c.PutAll(initial); err != nil {
		log.Fatalf("preload: %v", err)
	}

	// ---- Load generation ----
	w := p.Workload
	loader := func(ctx context.Context, k string) (string, error) {
		if w.LoadLatency > 0 {
			select {
			case <-time.After(w.LoadLatency):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		return "loaded:" + k, nil
	}

	var reads, writes, total atomic.Uint64
	ctx, cancel := context.WithTimeout(context.Background(), w.Duration)
	defer cancel()

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for id := range w.Workers {
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			r := rand.New(rand.NewSource(w.Seed + int64(id)*9973))
			zipf := rand.NewZipf(r, w.ZipfS, w.ZipfV, uint64(w.Keys-1))
			key := func() string { return "k:" + strconv.FormatUint(zipf.Uint64(), 10) }

			for gctx.Err() == nil {
				total.Add(1)
				if r.Intn(100) >= w.ReadPct {
					writes.Add(1)
					if err := c.Put(key(), "v"+strconv.Itoa(r.Int())); err != nil {
						return err
					}
					continue
				}
				reads.Add(1)
				if r.Intn(100) < w.LoadPct {
					if _, err := c.Get(gctx, key(), loader); err != nil && gctx.Err() == nil {
						return err
					}
				} else if _, _, err := c.GetIfPresent(key()); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("workload: %v", err)
	}
	elapsed := time.Since(start)

	// ---- Report ----
	ops := total.Load()
	s := c.Stats()
	fmt.Printf("policy=%s cap=%d shards=%d workers=%d keys=%d dur=%v seed=%d\n",
		p.Cache.Policy, p.Cache.MaximumSize, p.Cache.Shards, w.Workers, w.Keys, elapsed, w.Seed)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), reads.Load(), writes.Load())
	fmt.Printf("hit-rate=%.2f%%  loads=%d  avg-load=%v  evictions=%d\n",
		s.HitRate()*100, s.LoadCount(), s.AverageLoadPenalty(), s.EvictionCount)
	fmt.Printf("%s\n", s)
	fmt.Printf("EstimatedSize()=%d\n", c.EstimatedSize())
}
