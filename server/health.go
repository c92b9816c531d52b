package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/shieldpool/proof-gateway/types"
)

// Version is reported by GET /api/health.
const Version = "1.0.0"

func (s *Server) handleHealth(c *gin.Context) {
	status := s.computeHealth(c.Request.Context())

	code := http.StatusOK
	if status.Status == types.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// computeHealth pings both engines concurrently and derives the aggregate
// state: one dependency down means degraded, both down means unhealthy.
func (s *Server) computeHealth(ctx context.Context) types.HealthStatus {
	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.PingTimeout())
	defer cancel()

	deps := map[string]error{
		"prover":   nil,
		"verifier": nil,
	}
	var mu sync.Mutex
	var wg sync.WaitGroup

	ping := func(name string, fn func(context.Context) error) {
		defer wg.Done()
		err := fn(pingCtx)
		mu.Lock()
		deps[name] = err
		mu.Unlock()
	}

	wg.Add(2)
	go ping("prover", s.gen.Ping)
	go ping("verifier", s.ver.Ping)
	wg.Wait()

	down := 0
	detail := make(map[string]string, len(deps))
	for name, err := range deps {
		if err != nil {
			down++
			detail[name] = err.Error()
			s.log.Warnf("Health check: %s engine unreachable: %v", name, err)
		} else {
			detail[name] = "up"
		}
	}

	status := types.StatusHealthy
	switch down {
	case 1:
		status = types.StatusDegraded
	case 2:
		status = types.StatusUnhealthy
	}

	return types.HealthStatus{
		Status:       status,
		Timestamp:    s.clock.Now().Unix(),
		Version:      Version,
		Dependencies: detail,
	}
}
