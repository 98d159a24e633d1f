package service

import "testing"

func TestClassifyGrade(t *testing.T) {
	tests := []struct {
		pct    float64
		point  float64
		letter string
	}{
		{100, 4.0, "A+"},
		{97, 4.0, "A+"},
		{96.99, 4.0, "A"},
		{93, 4.0, "A"},
		{90, 3.7, "A-"},
		{87, 3.3, "B+"},
		{83, 3.0, "B"},
		{80, 2.7, "B-"},
		{77, 2.3, "C+"},
		{73, 2.0, "C"},
		{70, 1.7, "C-"},
		{67, 1.3, "D+"},
		{66.67, 1.0, "D"},
		{63, 1.0, "D"},
		{60, 0.7, "D-"},
		{59.99, 0.0, "F"},
		{0, 0.0, "F"},
		{-5, 0.0, "F"},
		{120, 4.0, "A+"},
	}
	for _, tt := range tests {
		point, letter := ClassifyGrade(tt.pct)
		if point != tt.point || letter != tt.letter {
			t.Errorf("ClassifyGrade(%v) = (%v, %q), want (%v, %q)", tt.pct, point, letter, tt.point, tt.letter)
		}
	}
}

func TestClassifyGradeMonotonic(t *testing.T) {
	prev := -1.0
	for p := 0.0; p <= 100; p += 0.25 {
		point, _ := ClassifyGrade(p)
		if point < prev {
			t.Fatalf("grade point decreased at %v: %v < %v", p, point, prev)
		}
		prev = point
	}
}

func TestIsPassing(t *testing.T) {
	if !IsPassing(60) {
		t.Error("60 should pass")
	}
	if IsPassing(59.99) {
		t.Error("59.99 should fail")
	}
}
