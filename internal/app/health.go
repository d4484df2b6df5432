package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"sailhaven/internal/domain"
)

// HealthCheck memoizes the outcome of probing the backends for ttl.
type HealthCheck struct {
	probes map[string]domain.Pinger
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	checked time.Time
	result  HealthReport
}

type HealthReport struct {
	OK        bool              `json:"ok"`
	Backends  map[string]string `json:"backends"`
	CheckedAt time.Time         `json:"checked_at"`
}

func NewHealthCheck(ttl time.Duration, probes map[string]domain.Pinger) *HealthCheck {
	return &HealthCheck{probes: probes, ttl: ttl, now: time.Now}
}

// Check returns the memoized report, probing again once it is older than ttl.
func (h *HealthCheck) Check(ctx context.Context) HealthReport {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.checked.IsZero() && h.now().Sub(h.checked) < h.ttl {
		return h.result
	}

	rep := HealthReport{OK: true, Backends: make(map[string]string, len(h.probes)), CheckedAt: h.now().UTC()}
	for name, p := range h.probes {
		if err := p.Ping(ctx); err != nil {
			rep.OK = false
			rep.Backends[name] = err.Error()
			log.Warn().Err(err).Str("backend", name).Msg("health probe failed")
			continue
		}
		rep.Backends[name] = "ok"
	}
	h.result = rep
	h.checked = h.now()
	return rep
}

// Invalidate forces the next Check to probe.
func (h *HealthCheck) Invalidate() {
	h.mu.Lock()
	h.checked = time.Time{}
	h.mu.Unlock()
}
