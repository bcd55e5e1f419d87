package mat44

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestInverse(t *testing.T) {
	testCases := []struct {
		m       T
		wantDet float64
	}{
		{Identity(), 1},
		{T{-5, 2, 6, -8, 1, -5, 1, 8, 7, 7, -6, -7, 1, -3, 7, 4}, 532},
		{T{8, -5, 9, 2, 7, 5, 6, 1, -6, 0, 9, 6, -3, 0, -9, -4}, -585},
	}

	for i, tc := range testCases {
		t.Run(fmt.Sprintf("Case %d", i), func(t *testing.T) {
			inv, det := Inverse(tc.m)
			if math.Abs(det-tc.wantDet) > 1e-9 {
				t.Errorf("Wrong determinant; got %v, want %v", det, tc.wantDet)
			}
			got := MulMM(tc.m, inv)
			if diff := cmp.Diff(got, Identity(), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("m * Inverse(m) is not the identity; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestInverseSingular(t *testing.T) {
	m := T{-4, 2, -2, -3, 9, 6, 2, 6, 0, -5, 1, -5, 0, 0, 0, 0}
	if _, det := Inverse(m); det != 0 {
		t.Errorf("Singular matrix reported determinant %v, want 0", det)
	}
	if det := Det(m); det != 0 {
		t.Errorf("Det(singular) = %v, want 0", det)
	}
}
