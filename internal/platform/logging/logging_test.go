package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New("chatty", zap.String("service", "forum"))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !log.Core().Enabled(zap.InfoLevel) || log.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected info level")
	}
}

func TestNew_DebugLevel(t *testing.T) {
	log, err := New(" DEBUG ")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !log.Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug level enabled")
	}
}
