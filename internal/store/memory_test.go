package store

import (
	"testing"

	"github.com/i474232898/city-weather/internal/weather"
)

func TestMemoryStoreStartsIdle(t *testing.T) {
	s := NewMemoryStore()
	if got := s.Current().Status; got != weather.StatusIdle {
		t.Fatalf("expected idle, got %s", got)
	}
	if s.Generation() != 0 {
		t.Fatalf("expected generation 0, got %d", s.Generation())
	}
}

func TestCommitRejectsStaleGeneration(t *testing.T) {
	s := NewMemoryStore()

	first := s.Begin(weather.Loading("q1", "Delhi"))
	second := s.Begin(weather.Loading("q2", "Mumbai"))

	if s.Commit(first, weather.Failure("q1", "Delhi", weather.MsgUnavailable)) {
		t.Fatal("stale commit should be rejected")
	}
	if got := s.Current(); got.QueryID != "q2" || got.Status != weather.StatusLoading {
		t.Fatalf("stale commit leaked into state: %+v", got)
	}

	rec := weather.WeatherRecord{City: "Mumbai"}
	if !s.Commit(second, weather.Success("q2", "Mumbai", rec)) {
		t.Fatal("latest commit should be applied")
	}
	if got := s.Current(); got.Status != weather.StatusSuccess || got.Record.City != "Mumbai" {
		t.Fatalf("unexpected state: %+v", got)
	}
}

func TestSubscribeKeepsLatestState(t *testing.T) {
	s := NewMemoryStore()
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	if st := <-ch; st.Status != weather.StatusIdle {
		t.Fatalf("expected initial idle state, got %s", st.Status)
	}

	gen := s.Begin(weather.Loading("q1", "Pune"))
	s.Commit(gen, weather.Failure("q1", "Pune", weather.MsgCityNotFound))

	// Loading was overwritten before it was read.
	st := <-ch
	if st.Status != weather.StatusFailure || st.Message != weather.MsgCityNotFound {
		t.Fatalf("expected latest failure state, got %+v", st)
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra state: %+v", extra)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := NewMemoryStore()
	ch, unsubscribe := s.Subscribe()
	<-ch
	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}
	// Publishing after unsubscribe must not panic.
	s.Begin(weather.Loading("q1", "Patna"))
}
