package circuit

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrOpen is returned without invoking the wrapped call while the breaker
// is tripped and the cooldown has not elapsed.
var ErrOpen = errors.New("circuit breaker open")

// Config tunes when a breaker trips and how long it stays tripped.
type Config struct {
	FailureLimit int           // consecutive failures before tripping
	Cooldown     time.Duration // how long to reject calls before probing
}

// DefaultConfig returns the tuning used for outbound SMTP delivery.
func DefaultConfig() Config {
	return Config{
		FailureLimit: 5,
		Cooldown:     30 * time.Second,
	}
}

// Breaker guards an outbound dependency. While tripped it fails calls fast
// instead of letting every request stall on a dial timeout. After the
// cooldown a single probe call is let through; its outcome decides whether
// the breaker restores or re-arms the cooldown.
type Breaker struct {
	mu        sync.Mutex
	name      string
	cfg       Config
	log       *zap.Logger
	tripped   bool
	probing   bool
	failures  int
	trippedAt time.Time
}

// NewBreaker creates a breaker in the healthy state.
func NewBreaker(name string, cfg Config, log *zap.Logger) *Breaker {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.FailureLimit <= 0 {
		cfg.FailureLimit = 1
	}
	return &Breaker{name: name, cfg: cfg, log: log}
}

// Do runs fn under the breaker. It returns ErrOpen without calling fn when
// the breaker is tripped, otherwise fn's own error.
func (b *Breaker) Do(fn func() error) error {
	if !b.acquire() {
		return ErrOpen
	}

	err := fn()
	b.settle(err)
	return err
}

// Tripped reports whether calls are currently being rejected.
func (b *Breaker) Tripped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tripped && !b.probing
}

// Reset forces the breaker back to healthy. Used after operator
// intervention, e.g. relay config was fixed out of band.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tripped = false
	b.probing = false
	b.failures = 0

	b.log.Info("Circuit breaker reset", zap.String("name", b.name))
}

func (b *Breaker) acquire() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.tripped {
		return true
	}
	if b.probing || time.Since(b.trippedAt) < b.cfg.Cooldown {
		return false
	}

	// Cooldown elapsed: admit exactly one probe.
	b.probing = true
	return true
}

func (b *Breaker) settle(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.tripped {
			b.log.Info("Circuit breaker restored",
				zap.String("name", b.name),
				zap.Int("failures", b.failures),
			)
		}
		b.tripped = false
		b.probing = false
		b.failures = 0
		return
	}

	b.failures++

	if b.tripped {
		// Probe failed: re-arm the cooldown.
		b.probing = false
		b.trippedAt = time.Now()
		return
	}

	if b.failures >= b.cfg.FailureLimit {
		b.tripped = true
		b.trippedAt = time.Now()
		b.log.Warn("Circuit breaker tripped",
			zap.String("name", b.name),
			zap.Int("failures", b.failures),
			zap.Duration("cooldown", b.cfg.Cooldown),
		)
	}
}
