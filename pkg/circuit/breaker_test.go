package circuit

import (
	"errors"
	"testing"
	"time"
)

var errDial = errors.New("smtp dial failed")

func failingCall() error { return errDial }
func okCall() error      { return nil }

func TestBreaker_StartsHealthy(t *testing.T) {
	b := NewBreaker("test", DefaultConfig(), nil)

	if b.Tripped() {
		t.Error("Expected new breaker to be healthy")
	}
	if err := b.Do(okCall); err != nil {
		t.Errorf("Expected call to pass through, got %v", err)
	}
}

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker("test", Config{FailureLimit: 3, Cooldown: time.Minute}, nil)

	for i := 0; i < 3; i++ {
		if err := b.Do(failingCall); !errors.Is(err, errDial) {
			t.Fatalf("Expected dial error on call %d, got %v", i, err)
		}
	}

	if !b.Tripped() {
		t.Fatal("Expected breaker to trip after 3 failures")
	}
	if err := b.Do(okCall); !errors.Is(err, ErrOpen) {
		t.Errorf("Expected ErrOpen while tripped, got %v", err)
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker("test", Config{FailureLimit: 2, Cooldown: time.Minute}, nil)

	b.Do(failingCall)
	b.Do(okCall)
	b.Do(failingCall)

	if b.Tripped() {
		t.Error("Expected interleaved success to keep breaker healthy")
	}
}

func TestBreaker_ProbeRestoresAfterCooldown(t *testing.T) {
	b := NewBreaker("test", Config{FailureLimit: 1, Cooldown: 20 * time.Millisecond}, nil)

	b.Do(failingCall)
	if !b.Tripped() {
		t.Fatal("Expected breaker to trip")
	}

	time.Sleep(30 * time.Millisecond)

	if err := b.Do(okCall); err != nil {
		t.Fatalf("Expected probe to pass through, got %v", err)
	}
	if b.Tripped() {
		t.Error("Expected successful probe to restore breaker")
	}
}

func TestBreaker_FailedProbeRearmsCooldown(t *testing.T) {
	b := NewBreaker("test", Config{FailureLimit: 1, Cooldown: 20 * time.Millisecond}, nil)

	b.Do(failingCall)
	time.Sleep(30 * time.Millisecond)

	if err := b.Do(failingCall); !errors.Is(err, errDial) {
		t.Fatalf("Expected probe to reach the call, got %v", err)
	}
	if err := b.Do(okCall); !errors.Is(err, ErrOpen) {
		t.Errorf("Expected failed probe to keep breaker tripped, got %v", err)
	}
}

func TestBreaker_Reset(t *testing.T) {
	b := NewBreaker("test", Config{FailureLimit: 1, Cooldown: time.Minute}, nil)

	b.Do(failingCall)
	if !b.Tripped() {
		t.Fatal("Expected breaker to trip")
	}

	b.Reset()

	if b.Tripped() {
		t.Error("Expected Reset to restore breaker")
	}
	if err := b.Do(okCall); err != nil {
		t.Errorf("Expected call to pass through after reset, got %v", err)
	}
}
