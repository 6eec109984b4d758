package prover

import (
	"sync"
	"time"

	"Reclaim/internal/claim"
)

const (
	// defaultCacheTTL is how long a produced proof is kept for retried requests.
	defaultCacheTTL = 10 * time.Minute

	// cleanupInterval is the interval between cleanup runs.
	cleanupInterval = 30 * time.Second
)

// cacheKey identifies a proving job.
type cacheKey struct {
	kernel [32]byte
	kind   claim.ProofKind
}

// proofCache keeps recently produced proofs so a client retrying after a
// dropped connection does not pay for proving twice.
// Entries expire after a TTL.
type proofCache struct {
	proofs map[cacheKey]cachedProof // proofs maps jobs to their proofs
	mu     sync.RWMutex             // mu protects the proofs map
	ttl    time.Duration            // ttl is the lifetime of an entry
	stop   chan struct{}            // stop signals the cleanup goroutine to stop
	wg     sync.WaitGroup           // wg waits for the cleanup goroutine
}

type cachedProof struct {
	proof  claim.Proof
	stored time.Time
}

// newProofCache creates a cache and starts its cleanup goroutine.
func newProofCache(ttl time.Duration) *proofCache {
	c := &proofCache{
		proofs: make(map[cacheKey]cachedProof),
		ttl:    ttl,
		stop:   make(chan struct{}),
	}

	c.startCleanup()

	return c
}

// get returns the cached proof of a job, if still fresh.
func (c *proofCache) get(key cacheKey) (claim.Proof, bool) {
	c.mu.RLock()
	entry, ok := c.proofs[key]
	c.mu.RUnlock()

	if !ok || time.Since(entry.stored) >= c.ttl {
		return claim.Proof{}, false
	}

	return entry.proof, true
}

// put records the proof of a job.
func (c *proofCache) put(key cacheKey, proof claim.Proof) {
	c.mu.Lock()
	c.proofs[key] = cachedProof{proof: proof, stored: time.Now()}
	c.mu.Unlock()
}

// len returns the number of entries, expired or not.
func (c *proofCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.proofs)
}

// close stops the cleanup goroutine.
func (c *proofCache) close() {
	close(c.stop)
	c.wg.Wait()
}

// startCleanup starts the background cleanup goroutine.
func (c *proofCache) startCleanup() {
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.cleanup()
			case <-c.stop:
				return
			}
		}
	}()
}

// cleanup removes expired entries.
func (c *proofCache) cleanup() {
	c.mu.Lock()
	for key, entry := range c.proofs {
		if time.Since(entry.stored) >= c.ttl {
			delete(c.proofs, key)
		}
	}
	c.mu.Unlock()
}
