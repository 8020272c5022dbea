package envutil

import (
	"testing"
	"time"
)

func TestInt(t *testing.T) {
	t.Setenv("SF_TEST_INT", "12")
	if got := Int("SF_TEST_INT", 3); got != 12 {
		t.Fatalf("Int: got %d", got)
	}
	t.Setenv("SF_TEST_INT", "nope")
	if got := Int("SF_TEST_INT", 3); got != 3 {
		t.Fatalf("Int fallback: got %d", got)
	}
}

func TestDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"5s", 5 * time.Second},
		{"90", 90 * time.Second},
		{"garbage", time.Minute},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			t.Setenv("SF_TEST_DUR", tc.raw)
			if got := Duration("SF_TEST_DUR", time.Minute); got != tc.want {
				t.Fatalf("Duration(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("SF_TEST_BOOL", "off")
	if Bool("SF_TEST_BOOL", true) {
		t.Fatalf("expected false")
	}
	t.Setenv("SF_TEST_LIST", " a, ,b ")
	got := List("SF_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: %v", got)
	}
}

func TestFloat(t *testing.T) {
	t.Setenv("SF_TEST_FLOAT", "0.25")
	if got := Float("SF_TEST_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: got %v", got)
	}
	t.Setenv("SF_TEST_FLOAT", "x")
	if got := Float("SF_TEST_FLOAT", 1); got != 1 {
		t.Fatalf("Float fallback: got %v", got)
	}
}
