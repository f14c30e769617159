package grpcapi

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheck_FollowsPing(t *testing.T) {
	var down bool
	s := NewServer(pingFunc(func(context.Context) error {
		if down {
			return errors.New("connection refused")
		}
		return nil
	}), nil)

	if st := s.Check(context.Background()); st != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", st)
	}
	resp, err := s.Health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", resp.GetStatus())
	}

	down = true
	s.Check(context.Background())
	resp, err = s.Health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING, got %v", resp.GetStatus())
	}
}

func TestCheck_NilPinger(t *testing.T) {
	s := NewServer(nil, nil)
	if st := s.Check(context.Background()); st != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", st)
	}
}

func TestWatch_ShutsDownOnCancel(t *testing.T) {
	s := NewServer(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Watch(ctx, 0)
		close(done)
	}()
	cancel()
	<-done

	resp, err := s.Health.Check(context.Background(), &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING after shutdown, got %v", resp.GetStatus())
	}
}

func TestUnaryLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ic := UnaryLogger(zap.New(core))
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	_, err := ic(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.Unavailable, "down")
	})
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}

	entries := logs.FilterMessage("grpc call failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 failure log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["code"]; got != "Unavailable" {
		t.Fatalf("expected code Unavailable, got %v", got)
	}
}
