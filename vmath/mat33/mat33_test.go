package mat33

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"whitted/vmath/vec3"
)

func TestInverse(t *testing.T) {
	testCases := []T{
		Identity(),
		{2, 0, 0, 0, 3, 0, 0, 0, 4},
		{0, 1, 0, 1, 0, 0, 0, 0, 1},
		{1, 2, 3, 0, 1, 4, 5, 6, 0},
		{-5, 2, 6, 1, -5, 1, 7, 7, -6},
	}

	for i, m := range testCases {
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			got := MulMM(m, Inverse(m))
			if diff := cmp.Diff(got, Identity(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("m * Inverse(m) is not the identity; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestDet(t *testing.T) {
	testCases := []struct {
		m    T
		want float64
	}{
		{Identity(), 1},
		{T{1, 2, 6, -5, 8, -4, 2, 6, 4}, -196},
		{T{1, 0, 0, 0, 0, 0, 0, 0, 1}, 0},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			if got := Det(tc.m); got != tc.want {
				t.Errorf("Det(%v) = %v, want %v", tc.m, got, tc.want)
			}
		})
	}
}

func TestMulMV(t *testing.T) {
	m := T{1, 2, 3, 4, 5, 6, 7, 8, 9}
	got := MulMV(m, vec3.T{1, 0, -1})
	want := vec3.T{-2, -2, -2}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Wrong product; diff (-got +want)\n%s", diff)
	}
}
