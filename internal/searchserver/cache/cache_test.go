package cache

import "testing"

func TestBuildKeyDeterministic(t *testing.T) {
	c := &QueryCache{}
	k1 := c.buildKey("alpha && beta", 0, 50)
	k2 := c.buildKey("alpha && beta", 0, 50)
	if k1 != k2 {
		t.Fatalf("buildKey not deterministic: %q != %q", k1, k2)
	}
}

func TestBuildKeyDistinguishesPagination(t *testing.T) {
	c := &QueryCache{}
	k1 := c.buildKey("alpha", 0, 50)
	k2 := c.buildKey("alpha", 50, 50)
	if k1 == k2 {
		t.Fatal("expected different keys for different offsets")
	}
}
