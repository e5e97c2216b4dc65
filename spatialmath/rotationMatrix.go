package spatialmath

import (
	"encoding/json"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// RotationMatrix is a 3x3 matrix in row major order.
// m[3*r + c] is the element in the r'th row and c'th col.
type RotationMatrix struct {
	mat [9]float64
}

// NewRotationMatrix creates the rotation matrix from a slice of 9 values in row major order.
func NewRotationMatrix(m []float64) (*RotationMatrix, error) {
	if len(m) != 9 {
		return nil, errors.Errorf("input slice has %d elements, need exactly 9", len(m))
	}
	rm := &RotationMatrix{}
	copy(rm.mat[:], m)
	return rm, nil
}

// NewIdentityRotationMatrix returns the rotation matrix of no rotation.
func NewIdentityRotationMatrix() *RotationMatrix {
	return &RotationMatrix{[9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
}

// QuatToRotationMatrix converts a quaternion to a rotation matrix. The quaternion is normalized
// first; a zero quaternion yields the identity.
func QuatToRotationMatrix(q quat.Number) *RotationMatrix {
	mq := toMgl(NormalizeQuat(q))
	rm := &RotationMatrix{}
	// The columns of a rotation matrix are the images of the basis vectors.
	for c, basis := range []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} {
		col := mq.Rotate(basis)
		for r := 0; r < 3; r++ {
			rm.mat[3*r+c] = col[r]
		}
	}
	return rm
}

// At returns the float corresponding to the element at the specified location.
func (rm *RotationMatrix) At(row, col int) float64 {
	return rm.mat[3*row+col]
}

// Row returns the a 3 element vector corresponding to the specified row.
func (rm *RotationMatrix) Row(row int) r3.Vector {
	return r3.Vector{X: rm.mat[3*row], Y: rm.mat[3*row+1], Z: rm.mat[3*row+2]}
}

// Col returns the a 3 element vector corresponding to the specified col.
func (rm *RotationMatrix) Col(col int) r3.Vector {
	return r3.Vector{X: rm.mat[col], Y: rm.mat[3+col], Z: rm.mat[6+col]}
}

// Mul returns the product of the matrix with a column vector.
func (rm *RotationMatrix) Mul(v r3.Vector) r3.Vector {
	return r3.Vector{X: rm.Row(0).Dot(v), Y: rm.Row(1).Dot(v), Z: rm.Row(2).Dot(v)}
}

// IsOrthonormal returns whether the rows of the matrix are unit length and mutually orthogonal,
// and the determinant is +1, within tolerance.
func (rm *RotationMatrix) IsOrthonormal(tol float64) bool {
	r0, r1, r2 := rm.Row(0), rm.Row(1), rm.Row(2)
	for _, d := range []float64{r0.Norm() - 1, r1.Norm() - 1, r2.Norm() - 1, r0.Dot(r1), r0.Dot(r2), r1.Dot(r2)} {
		if math.Abs(d) > tol {
			return false
		}
	}
	return math.Abs(r0.Dot(r1.Cross(r2))-1) <= tol
}

// MarshalJSON encodes the matrix as three rows.
func (rm *RotationMatrix) MarshalJSON() ([]byte, error) {
	rows := make([][3]float64, 3)
	for r := range rows {
		rows[r] = [3]float64{rm.mat[3*r], rm.mat[3*r+1], rm.mat[3*r+2]}
	}
	return json.Marshal(rows)
}
