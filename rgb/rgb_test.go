package rgb

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestArithmetic(t *testing.T) {
	a := T{0.9, 0.6, 0.75}
	b := T{0.7, 0.1, 0.25}

	approx := cmpopts.EquateApprox(0, 1e-9)
	if diff := cmp.Diff(Add(a, b), T{1.6, 0.7, 1.0}, approx); diff != "" {
		t.Errorf("Wrong sum; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(Sub(a, b), T{0.2, 0.5, 0.5}, approx); diff != "" {
		t.Errorf("Wrong difference; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(Scale(T{0.2, 0.3, 0.4}, 2), T{0.4, 0.6, 0.8}, approx); diff != "" {
		t.Errorf("Wrong scaled color; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(Mul(T{1, 0.2, 0.4}, T{0.9, 1, 0.1}), T{0.9, 0.2, 0.04}, approx); diff != "" {
		t.Errorf("Wrong product; diff (-got +want)\n%s", diff)
	}
}

func TestByte(t *testing.T) {
	testCases := []struct {
		in   float64
		want uint8
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 128},
		{1, 255},
		{1.5, 255},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			if got := Byte(tc.in); got != tc.want {
				t.Errorf("Byte(%v) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}
