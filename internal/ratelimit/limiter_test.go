package ratelimit

import (
	"testing"
	"time"

	"github.com/faideww/fishon/internal/clock"
)

var start = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFixedCooldown(t *testing.T) {
	clk := clock.NewManual(start)
	l := NewLimiter(10*time.Second, 10*time.Second, clk)

	if ok, _ := l.Try("u1", "fish"); !ok {
		t.Fatal("first try refused")
	}
	clk.Advance(4 * time.Second)
	ok, wait := l.Try("u1", "fish")
	if ok || wait != 6*time.Second {
		t.Fatalf("got ok=%v wait=%v, want refusal with 6s left", ok, wait)
	}

	if ok, _ := l.Try("u2", "fish"); !ok {
		t.Fatal("cooldown leaked to another player")
	}
	if ok, _ := l.Try("u1", "shop"); !ok {
		t.Fatal("cooldown leaked to another bucket")
	}

	clk.Advance(6 * time.Second)
	if ok, _ := l.Try("u1", "fish"); !ok {
		t.Fatal("refused after the cooldown ran out")
	}
}

func TestJitterStaysInRange(t *testing.T) {
	clk := clock.NewManual(start)
	l := NewLimiter(2*time.Second, 5*time.Second, clk)
	for i := 0; i < 200; i++ {
		if ok, _ := l.Try("u", "b"); !ok {
			t.Fatalf("try %d refused after the last cooldown ran out", i)
		}
		ok, wait := l.Try("u", "b")
		if ok {
			t.Fatal("no cooldown recorded")
		}
		if wait < 2*time.Second || wait >= 5*time.Second {
			t.Fatalf("cooldown %v outside [2s,5s)", wait)
		}
		clk.Advance(5 * time.Second)
	}
}

func TestZeroMinDisables(t *testing.T) {
	l := NewLimiter(0, 0, clock.NewManual(start))
	for i := 0; i < 3; i++ {
		if ok, _ := l.Try("u", "b"); !ok {
			t.Fatal("disabled limiter refused")
		}
	}
	if n := l.Sweep(); n != 0 {
		t.Fatalf("disabled limiter recorded %d cooldowns", n)
	}
}

func TestSweep(t *testing.T) {
	clk := clock.NewManual(start)
	l := NewLimiter(time.Second, time.Second, clk)
	l.Try("a", "b")
	clk.Advance(500 * time.Millisecond)
	l.Try("c", "b")
	clk.Advance(600 * time.Millisecond)

	if n := l.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if ok, _ := l.Try("c", "b"); ok {
		t.Fatal("live cooldown dropped")
	}
	if n := l.Sweep(); n != 0 {
		t.Fatalf("second sweep dropped %d", n)
	}
}
