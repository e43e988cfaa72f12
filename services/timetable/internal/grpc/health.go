package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service key for the timetable as a whole. The
// empty name reports the same status.
const ServiceName = "huwaari.timetable.v1.Timetable"

// Check pings one dependency.
type Check func(ctx context.Context) error

// Health serves grpc.health.v1 and flips to NOT_SERVING while any check fails.
type Health struct {
	server   *health.Server
	checks   map[string]Check
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

func NewHealth(checks map[string]Check, interval time.Duration, logger *zap.Logger) *Health {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Health{
		server:   health.NewServer(),
		checks:   checks,
		interval: interval,
		timeout:  5 * time.Second,
		logger:   logger,
	}
	h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *Health) Register(s *grpclib.Server) {
	healthpb.RegisterHealthServer(s, h.server)
}

// Probe runs every check once and records the result.
func (h *Health) Probe(ctx context.Context) bool {
	ok := true
	for name, check := range h.checks {
		checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := check(checkCtx)
		cancel()
		if err != nil {
			h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			ok = false
		}
	}
	if ok {
		h.set(healthpb.HealthCheckResponse_SERVING)
	} else {
		h.set(healthpb.HealthCheckResponse_NOT_SERVING)
	}
	return ok
}

// Start probes immediately and then on every interval until ctx is
// cancelled. The returned channel closes when the loop exits.
func (h *Health) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	h.Probe(ctx)
	ticker := time.NewTicker(h.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Probe(ctx)
			}
		}
	}()
	return done
}

// Shutdown reports NOT_SERVING to every watcher and ignores later updates.
func (h *Health) Shutdown() {
	h.server.Shutdown()
}

func (h *Health) set(status healthpb.HealthCheckResponse_ServingStatus) {
	h.server.SetServingStatus("", status)
	h.server.SetServingStatus(ServiceName, status)
}
