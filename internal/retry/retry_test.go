package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

var errTransient = errors.New("transient")

func TestDoSucceedsFirstAttempt(t *testing.T) {
	p := Policy{MaxAttempts: 3, Delay: time.Millisecond}

	calls := 0
	v, err := Do(context.Background(), p, func(attempt int) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if v != 42 || calls != 1 {
		t.Errorf("v = %d, calls = %d", v, calls)
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := Policy{MaxAttempts: 5, Delay: time.Millisecond}

	var attempts []int
	v, err := Do(context.Background(), p, func(attempt int) (string, error) {
		attempts = append(attempts, attempt)
		if attempt < 3 {
			return "", errTransient
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if v != "ok" {
		t.Errorf("v = %q", v)
	}
	if len(attempts) != 3 || attempts[0] != 1 || attempts[2] != 3 {
		t.Errorf("attempts = %v", attempts)
	}
}

func TestDoExhaustsBudget(t *testing.T) {
	p := Policy{MaxAttempts: 5, Delay: time.Millisecond}

	calls := 0
	_, err := Do(context.Background(), p, func(int) (int, error) {
		calls++
		return 0, errTransient
	})
	if calls != 5 {
		t.Errorf("calls = %d, want 5", calls)
	}
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("err = %v, want ErrExhausted", err)
	}
	if !errors.Is(err, errTransient) {
		t.Errorf("err = %v, want wrapped last error", err)
	}
}

func TestDoPermanentStopsImmediately(t *testing.T) {
	p := Policy{MaxAttempts: 5, Delay: time.Millisecond}

	terminal := errors.New("order not found")
	calls := 0
	_, err := Do(context.Background(), p, func(int) (int, error) {
		calls++
		return 0, Permanent(fmt.Errorf("cancel: %w", terminal))
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, terminal) {
		t.Errorf("err = %v, want wrapped terminal error", err)
	}
	if errors.Is(err, ErrExhausted) {
		t.Error("permanent error reported as exhaustion")
	}
}

func TestDoUnboundedStopsOnContextCancel(t *testing.T) {
	p := Policy{MaxAttempts: Unbounded, Delay: time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Do(ctx, p, func(int) (int, error) {
			calls++
			if calls == 10 {
				cancel()
			}
			return 0, errTransient
		})
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("unbounded retry did not stop after cancellation")
	}
	if calls < 10 {
		t.Errorf("calls = %d, want >= 10", calls)
	}
}

func TestExponentialScheduleDoubles(t *testing.T) {
	p := Policy{Strategy: Exponential, Delay: 100 * time.Millisecond, MaxDelay: 400 * time.Millisecond}

	b := p.backOff()
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		400 * time.Millisecond, // capped
	}
	for i, w := range want {
		got := b.NextBackOff()
		if got != w {
			t.Errorf("NextBackOff #%d = %v, want %v", i+1, got, w)
		}
	}
}

func TestFixedScheduleIsConstant(t *testing.T) {
	p := Policy{Strategy: Fixed, Delay: 5 * time.Millisecond}
	b := p.backOff()
	for i := 0; i < 3; i++ {
		if got := b.NextBackOff(); got != 5*time.Millisecond {
			t.Errorf("NextBackOff #%d = %v", i+1, got)
		}
	}
}

func TestPermanentNil(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) != nil")
	}
}
