package queue

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/authlab/members/internal/api/metrics"
)

const (
	// DefaultCost is the bcrypt work factor used for stored passwords.
	DefaultCost   = 12
	channelBuffer = 64
)

// ErrPoolStopped is returned for jobs submitted after Stop.
var ErrPoolStopped = errors.New("hash pool stopped")

type jobKind int

const (
	jobHash jobKind = iota
	jobCompare
)

func (k jobKind) String() string {
	if k == jobHash {
		return "hash"
	}
	return "compare"
}

type hashJob struct {
	kind     jobKind
	password string
	hash     string
	reply    chan hashResult
}

type hashResult struct {
	hash  string
	match bool
	err   error
}

// HashPool runs all bcrypt work on a fixed set of worker goroutines so that
// CPU-heavy hashing stays bounded no matter how many requests are in flight.
// It implements ports.PasswordHasher.
type HashPool struct {
	jobs    chan hashJob
	workers int
	cost    int
	log     zerolog.Logger

	stopOnce sync.Once
	stopped  chan struct{}
	wg       sync.WaitGroup
}

// NewHashPool creates a pool with numWorkers workers hashing at cost.
// If numWorkers <= 0, runtime.NumCPU() is used; if cost is 0, DefaultCost.
func NewHashPool(numWorkers, cost int, log zerolog.Logger) (*HashPool, error) {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if cost == 0 {
		cost = DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("hash pool: cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &HashPool{
		jobs:    make(chan hashJob, channelBuffer),
		workers: numWorkers,
		cost:    cost,
		log:     log,
		stopped: make(chan struct{}),
	}, nil
}

// Start launches the worker goroutines. Workers exit when ctx is cancelled or
// Stop is called.
func (p *HashPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.runWorker(ctx, i)
	}
}

// Stop signals the workers to exit and waits for them.
func (p *HashPool) Stop() {
	p.stopOnce.Do(func() { close(p.stopped) })
	p.wg.Wait()
}

// Hash returns the bcrypt hash of password.
func (p *HashPool) Hash(ctx context.Context, password string) (string, error) {
	res, err := p.submit(ctx, hashJob{kind: jobHash, password: password})
	if err != nil {
		return "", err
	}
	return res.hash, res.err
}

// Compare reports whether password matches hash in constant time.
func (p *HashPool) Compare(ctx context.Context, hash, password string) (bool, error) {
	res, err := p.submit(ctx, hashJob{kind: jobCompare, hash: hash, password: password})
	if err != nil {
		return false, err
	}
	return res.match, res.err
}

func (p *HashPool) submit(ctx context.Context, job hashJob) (hashResult, error) {
	job.reply = make(chan hashResult, 1)

	select {
	case <-p.stopped:
		return hashResult{}, ErrPoolStopped
	default:
	}

	select {
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	case <-p.stopped:
		return hashResult{}, ErrPoolStopped
	case p.jobs <- job:
	}

	select {
	case <-ctx.Done():
		return hashResult{}, ctx.Err()
	case <-p.stopped:
		return hashResult{}, ErrPoolStopped
	case res := <-job.reply:
		return res, nil
	}
}

func (p *HashPool) runWorker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopped:
			return
		case job := <-p.jobs:
			job.reply <- p.process(job, id)
		}
	}
}

func (p *HashPool) process(job hashJob, id int) hashResult {
	start := time.Now()
	defer func() {
		metrics.PasswordHashDuration.WithLabelValues(job.kind.String()).Observe(time.Since(start).Seconds())
	}()

	switch job.kind {
	case jobHash:
		h, err := bcrypt.GenerateFromPassword([]byte(job.password), p.cost)
		if err != nil {
			p.log.Error().Err(err).Int("worker_id", id).Msg("password hashing failed")
			return hashResult{err: fmt.Errorf("bcrypt hash: %w", err)}
		}
		return hashResult{hash: string(h)}
	default:
		err := bcrypt.CompareHashAndPassword([]byte(job.hash), []byte(job.password))
		if err == nil {
			return hashResult{match: true}
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return hashResult{match: false}
		}
		return hashResult{err: fmt.Errorf("bcrypt compare: %w", err)}
	}
}
