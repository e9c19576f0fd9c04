// Command authgate-loadtest measures token validation throughput in
// both validation modes against a local or external Redis.
//
// It seeds sessions through the engine, then runs two phases: one
// hammering signature-only validation, one hammering ledger-checked
// validation, and prints latency percentiles for each.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authgate "github.com/narinote/authgate"
)

type seedStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*authgate.UserRecord
}

func (s *seedStore) FindByEmail(_ context.Context, email string) (*authgate.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (s *seedStore) Create(_ context.Context, input authgate.CreateUserInput) (*authgate.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u := &authgate.UserRecord{ID: s.nextID, Email: input.Email, Name: input.Name, PasswordHash: input.PasswordHash}
	s.users[input.Email] = u
	copied := *u
	return &copied, nil
}

func main() {
	var (
		sessions    = flag.Int("sessions", 10000, "number of sessions to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *sessions <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "sessions, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := authgate.DefaultConfig()
	cfg.JWT.Secret = []byte("loadtest-secret-loadtest-secret!")
	// Cheap hashing: this tool measures validation, not Argon2.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Audit.Enabled = false
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := authgate.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserStore(&seedStore{users: make(map[string]*authgate.UserRecord)}).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()

	res, err := engine.SignUp(ctx, authgate.SignUpRequest{
		Email:    "bench@example.com",
		Name:     "Bench",
		Password: "K9!mqT2vLx",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed signup: %v\n", err)
		os.Exit(1)
	}

	tokens := make([]string, 0, *sessions)
	tokens = append(tokens, res.Token)
	for i := 1; i < *sessions; i++ {
		r, err := engine.SignIn(ctx, "bench@example.com", "K9!mqT2vLx")
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed signin: %v\n", err)
			os.Exit(1)
		}
		tokens = append(tokens, r.Token)
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	signatureStats := runPhase(ctx, engine, tokens, authgate.ModeSignatureOnly, *ops, *concurrency)
	ledgerStats := runPhase(ctx, engine, tokens, authgate.ModeLedger, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("signature-only", signatureStats)
	printStats("ledger-checked", ledgerStats)
}

type phaseStats struct {
	total    time.Duration
	failures int64
	count    int
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	max      time.Duration
}

func runPhase(ctx context.Context, engine *authgate.Engine, tokens []string, mode authgate.ValidationMode, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, ops)
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				token := tokens[r.Intn(len(tokens))]
				t0 := time.Now()
				_, err := engine.AuthenticateWithMode(ctx, token, mode)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func computeStats(total time.Duration, latencies []time.Duration, failures int64) phaseStats {
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	stats := phaseStats{total: total, failures: failures, count: len(latencies)}
	if len(latencies) == 0 {
		return stats
	}

	stats.p50 = latencies[len(latencies)*50/100]
	stats.p95 = latencies[len(latencies)*95/100]
	stats.p99 = latencies[min(len(latencies)*99/100, len(latencies)-1)]
	stats.max = latencies[len(latencies)-1]
	return stats
}

func printStats(name string, s phaseStats) {
	opsPerSec := float64(s.count) / s.total.Seconds()
	fmt.Printf("%s: %d ops in %s (%.0f ops/s), %d failures\n",
		name, s.count, s.total.Round(time.Millisecond), opsPerSec, s.failures)
	fmt.Printf("  p50=%s p95=%s p99=%s max=%s\n",
		s.p50, s.p95, s.p99, s.max)
}
