package ray

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"whitted/affinetransform"
	"whitted/vmath/vec3"
)

func TestPosition(t *testing.T) {
	r := New(vec3.T{2, 3, 4}, vec3.T{1, 0, 0})

	testCases := []struct {
		t    float64
		want vec3.T
	}{
		{0, vec3.T{2, 3, 4}},
		{1, vec3.T{3, 3, 4}},
		{-1, vec3.T{1, 3, 4}},
		{2.5, vec3.T{4.5, 3, 4}},
	}

	for _, tc := range testCases {
		if diff := cmp.Diff(r.Position(tc.t), tc.want); diff != "" {
			t.Errorf("Wrong position at t=%v; diff (-got +want)\n%s", tc.t, diff)
		}
	}
}

func TestTransform(t *testing.T) {
	r := New(vec3.T{1, 2, 3}, vec3.T{0, 1, 0})

	translated := r.Transform(affinetransform.Translate(vec3.T{3, 4, 5}))
	if diff := cmp.Diff(translated, New(vec3.T{4, 6, 8}, vec3.T{0, 1, 0})); diff != "" {
		t.Errorf("Wrong translated ray; diff (-got +want)\n%s", diff)
	}

	// Scaling must not renormalize the direction.
	scaled := r.Transform(affinetransform.Scale(vec3.T{2, 3, 4}))
	if diff := cmp.Diff(scaled, New(vec3.T{2, 6, 12}, vec3.T{0, 3, 0})); diff != "" {
		t.Errorf("Wrong scaled ray; diff (-got +want)\n%s", diff)
	}

	if r.Origin != (vec3.T{1, 2, 3}) {
		t.Errorf("Transform modified the original ray")
	}
}
