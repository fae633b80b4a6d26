package repository

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/wellness-api/internal/models"
	"github.com/noah-isme/wellness-api/pkg/config"
)

// IDGenerator produces record identifiers of the form prefix_suffix.
type IDGenerator interface {
	NewID(prefix string) string
}

// MonotonicIDs issues prefix_<unix millis>, bumping past the last issued
// value so two ids from one process never collide.
type MonotonicIDs struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewMonotonicIDs returns a generator on the wall clock.
func NewMonotonicIDs() *MonotonicIDs {
	return &MonotonicIDs{now: time.Now}
}

func (g *MonotonicIDs) NewID(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := models.Millis(g.now())
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return prefix + "_" + strconv.FormatInt(ms, 10)
}

// RandomIDs issues prefix_<uuid v4>.
type RandomIDs struct{}

func (RandomIDs) NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}

// NewIDGenerator maps an ID_STRATEGY value to a generator.
func NewIDGenerator(strategy string) IDGenerator {
	if strategy == config.IDStrategyUUID {
		return RandomIDs{}
	}
	return NewMonotonicIDs()
}
