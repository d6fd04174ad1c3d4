package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"clipcast/internal/model"
)

func fastConfig(maxRetries int) Config {
	return Config{
		MaxRetries:  maxRetries,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(3), func() (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" || calls != 1 {
		t.Errorf("got %q after %d calls, want %q after 1", got, calls, "ok")
	}
}

func TestDoRetriesRetryableErrors(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(3), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, model.NewPlatformError(model.PlatformYouTube, model.ErrNetwork, errors.New("connection reset"))
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("got %d after %d calls, want 42 after 3", got, calls)
	}
}

func TestDoStopsOnTerminalError(t *testing.T) {
	calls := 0
	authErr := model.NewPlatformError(model.PlatformInstagram, model.ErrAuth, errors.New("bad password"))
	_, err := Do(context.Background(), fastConfig(5), func() (int, error) {
		calls++
		return 0, authErr
	})
	if !errors.Is(err, model.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("terminal error retried %d times, want 1 call", calls)
	}
}

func TestDoExhaustsRetries(t *testing.T) {
	calls := 0
	rlErr := model.NewPlatformError(model.PlatformInstagram, model.ErrRateLimited, errors.New("429"))
	_, err := Do(context.Background(), fastConfig(2), func() (int, error) {
		calls++
		return 0, rlErr
	})
	if !errors.Is(err, model.ErrRateLimited) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("got %d calls, want 3 (initial + 2 retries)", calls)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Do(ctx, Config{MaxRetries: 5, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 2}, func() (int, error) {
		calls++
		cancel()
		return 0, model.NewPlatformError(model.PlatformYouTube, model.ErrNetwork, errors.New("timeout"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}
}
