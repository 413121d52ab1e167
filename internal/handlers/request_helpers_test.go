package handlers

import (
	"errors"
	"testing"
)

func TestWithRetriesStopsOnFirstSuccess(t *testing.T) {
	calls := 0
	err := withRetries(3, 0, func() error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}
}

func TestWithRetriesReturnsLastError(t *testing.T) {
	calls := 0
	err := withRetries(3, 0, func() error {
		calls++
		return errors.New("still down")
	})

	if err == nil || err.Error() != "still down" {
		t.Fatalf("expected the last error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}
