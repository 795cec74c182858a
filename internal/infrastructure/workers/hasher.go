// Package workers offloads CPU-bound bcrypt work to a bounded pool so login
// bursts cannot starve the request-handling goroutines.
package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/altdap/identity-service/internal/api/metrics"
	"github.com/altdap/identity-service/internal/pkg/secrets"
)

const (
	defaultWorkers = 4
	queueBuffer    = 64
)

// HasherPool runs password hashing and verification on a fixed set of
// workers. Submissions honour context cancellation both while queued and
// while waiting for the result. No ordering is guaranteed across calls.
type HasherPool struct {
	jobs chan func()
	cost int
}

// NewHasherPool creates a pool with numWorkers workers hashing at the given
// bcrypt cost. If numWorkers <= 0, defaultWorkers is used; costs below the
// floor are bumped by the secrets package.
func NewHasherPool(numWorkers, cost int, log zerolog.Logger) *HasherPool {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	p := &HasherPool{
		jobs: make(chan func(), queueBuffer),
		cost: cost,
	}
	for i := 0; i < numWorkers; i++ {
		go p.runWorker()
	}
	log.Debug().Int("workers", numWorkers).Int("cost", cost).Msg("password hasher pool started")
	return p
}

func (p *HasherPool) runWorker() {
	for job := range p.jobs {
		job()
		metrics.HashQueueDepth.Set(float64(len(p.jobs)))
	}
}

// Close stops the workers once queued jobs drain. Submissions after Close
// panic; the pool is expected to outlive the HTTP server.
func (p *HasherPool) Close() {
	close(p.jobs)
}

type hashResult struct {
	hash string
	err  error
}

// Hash computes a bcrypt hash on a pool worker.
func (p *HasherPool) Hash(ctx context.Context, plaintext string) (string, error) {
	start := time.Now()
	done := make(chan hashResult, 1)

	job := func() {
		hash, err := secrets.HashPassword(plaintext, p.cost)
		done <- hashResult{hash: hash, err: err}
	}

	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return "", fmt.Errorf("hash: %w", ctx.Err())
	}
	metrics.HashQueueDepth.Set(float64(len(p.jobs)))

	select {
	case res := <-done:
		metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
		return res.hash, res.err
	case <-ctx.Done():
		// The worker finishes and discards the result; the buffered channel
		// keeps it from blocking.
		return "", fmt.Errorf("hash: %w", ctx.Err())
	}
}

// Compare verifies plaintext against a stored hash on a pool worker. The
// bool is the verdict; the error covers cancellation only.
func (p *HasherPool) Compare(ctx context.Context, hash, plaintext string) (bool, error) {
	start := time.Now()
	done := make(chan bool, 1)

	job := func() {
		done <- bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
	}

	select {
	case p.jobs <- job:
	case <-ctx.Done():
		return false, fmt.Errorf("compare: %w", ctx.Err())
	}
	metrics.HashQueueDepth.Set(float64(len(p.jobs)))

	select {
	case match := <-done:
		metrics.PasswordHashDuration.Observe(time.Since(start).Seconds())
		return match, nil
	case <-ctx.Done():
		return false, fmt.Errorf("compare: %w", ctx.Err())
	}
}
