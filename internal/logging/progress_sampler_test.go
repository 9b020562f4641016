package logging

import "testing"

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(10)

	if !s.ShouldLog(0) {
		t.Fatal("first event should log")
	}
	if s.ShouldLog(4) {
		t.Fatal("same bucket should not log")
	}
	if !s.ShouldLog(12) {
		t.Fatal("next bucket should log")
	}
	if !s.ShouldLog(100) {
		t.Fatal("completion should log")
	}
	if s.ShouldLog(100) {
		t.Fatal("repeated completion should not log")
	}
}

func TestProgressSamplerUnknownPercent(t *testing.T) {
	s := NewProgressSampler(10)
	if s.ShouldLog(-1) {
		t.Fatal("unknown percent should be suppressed")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog(50)
	s.Reset()
	if !s.ShouldLog(0) {
		t.Fatal("reset sampler should log from zero again")
	}
}
