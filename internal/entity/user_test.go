package entity_test

import (
	"testing"
	"time"

	"skripta.hr/forum/internal/entity"
)

func TestIsInTimeoutAtDerivedFromStoredTimestamp(t *testing.T) {
	until := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	user := entity.User{TimeoutUntil: &until}

	if !user.IsInTimeoutAt(until.Add(-time.Minute)) {
		t.Fatal("expected timeout before the stored timestamp")
	}
	if user.IsInTimeoutAt(until) {
		t.Fatal("timeout should end exactly at the stored timestamp")
	}
	if user.IsInTimeoutAt(until.Add(time.Minute)) {
		t.Fatal("expected timeout to have expired, with nothing clearing the row")
	}
}

func TestIsInTimeoutAtWithoutTimeout(t *testing.T) {
	user := entity.User{}
	if user.IsInTimeoutAt(time.Now()) {
		t.Fatal("user without timeout_until is never in timeout")
	}
}
