package postingops

import (
	"reflect"
	"testing"
)

func TestIntersect(t *testing.T) {
	cases := []struct {
		a, b, want []uint32
	}{
		{[]uint32{1, 2, 3}, []uint32{2, 3, 4}, []uint32{2, 3}},
		{[]uint32{}, []uint32{1, 2}, []uint32{}},
		{[]uint32{1, 3, 5}, []uint32{2, 4, 6}, []uint32{}},
		{[]uint32{1, 2, 3}, []uint32{1, 2, 3}, []uint32{1, 2, 3}},
	}
	for _, c := range cases {
		got := Intersect(c.a, c.b)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Intersect(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestUnion(t *testing.T) {
	cases := []struct {
		a, b, want []uint32
	}{
		{[]uint32{1, 2, 3}, []uint32{2, 3, 4}, []uint32{1, 2, 3, 4}},
		{[]uint32{}, []uint32{1, 2}, []uint32{1, 2}},
		{[]uint32{1, 3}, []uint32{2, 4}, []uint32{1, 2, 3, 4}},
	}
	for _, c := range cases {
		got := Union(c.a, c.b)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Union(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestComplement(t *testing.T) {
	universe := []uint32{1, 2, 3, 4, 5}
	excluded := []uint32{2, 4}
	want := []uint32{1, 3, 5}
	got := Complement(excluded, universe)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Complement(%v, %v) = %v, want %v", excluded, universe, got, want)
	}
}

func TestComplementExcludedNotSubset(t *testing.T) {
	universe := []uint32{1, 3, 5}
	excluded := []uint32{2, 3, 9}
	want := []uint32{1, 5}
	got := Complement(excluded, universe)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Complement(%v, %v) = %v, want %v", excluded, universe, got, want)
	}
}

func TestUnionCommutative(t *testing.T) {
	a := []uint32{1, 4, 7, 10}
	b := []uint32{2, 4, 8, 10, 11}
	if !reflect.DeepEqual(Union(a, b), Union(b, a)) {
		t.Error("Union is not commutative")
	}
}

func TestIntersectCommutative(t *testing.T) {
	a := []uint32{1, 4, 7, 10}
	b := []uint32{2, 4, 8, 10, 11}
	if !reflect.DeepEqual(Intersect(a, b), Intersect(b, a)) {
		t.Error("Intersect is not commutative")
	}
}
