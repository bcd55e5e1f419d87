// Package mat44 is a row-major 4x4 matrix, used for the homogeneous form of
// affine transforms.
package mat44

import "math"

type T [16]float64

func Identity() T {
	return T{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

func MulMM(a, b T) T {
	result := T{}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				result[i*4+j] += a[i*4+k] * b[k*4+j]
			}
		}
	}
	return result
}

func Transpose(m T) T {
	transpose := T{}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			transpose[c*4+r] = m[r*4+c]
		}
	}
	return transpose
}

// rowEchelonInplace reduces m to upper-triangular form, mirroring every row
// operation into a.  It returns the determinant of the original m.
func rowEchelonInplace(m, a *T) float64 {
	det := 1.0
	for k := 0; k < 4; k++ {
		// Select the row below row k with the best pivot.
		maxRow := k
		for i := k; i < 4; i++ {
			if math.Abs(m[i*4+k]) > math.Abs(m[maxRow*4+k]) {
				maxRow = i
			}
		}

		if maxRow != k {
			det = -det
			for i := 0; i < 4; i++ {
				m[k*4+i], m[maxRow*4+i] = m[maxRow*4+i], m[k*4+i]
				a[k*4+i], a[maxRow*4+i] = a[maxRow*4+i], a[k*4+i]
			}
		}

		pivot := m[k*4+k]
		det *= pivot
		if pivot == 0 {
			return 0
		}
		for r := k + 1; r < 4; r++ {
			scale := m[r*4+k] / pivot
			for c := k + 1; c < 4; c++ {
				m[r*4+c] -= m[k*4+c] * scale
			}
			for c := 0; c < 4; c++ {
				a[r*4+c] -= a[k*4+c] * scale
			}
			m[r*4+k] = 0.0
		}
	}
	return det
}

func backsubInplace(m, a *T) {
	for k := 4 - 1; k > 0; k-- {
		// Nullify all entries above the pivot element m[k,k].
		for r := 0; r < k; r++ {
			scale := m[r*4+k] / m[k*4+k]

			m[r*4+k] = 0
			for c := k + 1; c < 4; c++ {
				m[r*4+c] -= m[k*4+c] * scale
			}
			for c := 0; c < 4; c++ {
				a[r*4+c] -= a[k*4+c] * scale
			}
		}
	}

	for k := 0; k < 4; k++ {
		for c := k + 1; c < 4; c++ {
			m[k*4+c] /= m[k*4+k]
		}
		for c := 0; c < 4; c++ {
			a[k*4+c] /= m[k*4+k]
		}
		m[k*4+k] = 1
	}
}

// Det computes the determinant by elimination.
func Det(m T) float64 {
	a := Identity()
	return rowEchelonInplace(&m, &a)
}

// Inverse returns the inverse of m and its determinant.  When the determinant
// is zero the returned matrix is meaningless.
func Inverse(m T) (T, float64) {
	a := Identity()
	det := rowEchelonInplace(&m, &a)
	if det == 0 {
		return T{}, 0
	}
	backsubInplace(&m, &a)
	return a, det
}
