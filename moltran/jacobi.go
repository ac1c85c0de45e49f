package moltran

import "math"

const (
	jacobiSweeps = 32
	jacobiTol    = 1e-14
)

// jacobiEigen3 diagonalizes a symmetric 3x3 matrix by cyclic Jacobi
// rotations. It returns the eigenvalues in descending order and the matching
// eigenvectors as the columns of vecs.
func jacobiEigen3(a [3][3]float64) (vals [3]float64, vecs [3][3]float64) {
	for i := 0; i < 3; i++ {
		vecs[i][i] = 1
	}
	for sweep := 0; sweep < jacobiSweeps; sweep++ {
		off := a[0][1]*a[0][1] + a[0][2]*a[0][2] + a[1][2]*a[1][2]
		if off < jacobiTol {
			break
		}
		for p := 0; p < 2; p++ {
			for q := p + 1; q < 3; q++ {
				if a[p][q] == 0 {
					continue
				}
				theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
				t := math.Copysign(1, theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				c := 1 / math.Sqrt(t*t+1)
				s := t * c
				rotatePair(&a, p, q, c, s)
				for i := 0; i < 3; i++ {
					vip, viq := vecs[i][p], vecs[i][q]
					vecs[i][p] = c*vip - s*viq
					vecs[i][q] = s*vip + c*viq
				}
			}
		}
	}
	for i := 0; i < 3; i++ {
		vals[i] = a[i][i]
	}
	sortEigen(&vals, &vecs)
	return vals, vecs
}

// rotatePair applies the two-sided Givens rotation eliminating a[p][q].
func rotatePair(a *[3][3]float64, p, q int, c, s float64) {
	app, aqq, apq := a[p][p], a[q][q], a[p][q]
	a[p][p] = c*c*app - 2*s*c*apq + s*s*aqq
	a[q][q] = s*s*app + 2*s*c*apq + c*c*aqq
	a[p][q] = 0
	a[q][p] = 0
	r := 3 - p - q // the remaining index
	arp, arq := a[r][p], a[r][q]
	a[r][p] = c*arp - s*arq
	a[p][r] = a[r][p]
	a[r][q] = s*arp + c*arq
	a[q][r] = a[r][q]
}

func sortEigen(vals *[3]float64, vecs *[3][3]float64) {
	for i := 0; i < 2; i++ {
		best := i
		for j := i + 1; j < 3; j++ {
			if vals[j] > vals[best] {
				best = j
			}
		}
		if best != i {
			vals[i], vals[best] = vals[best], vals[i]
			for r := 0; r < 3; r++ {
				vecs[r][i], vecs[r][best] = vecs[r][best], vecs[r][i]
			}
		}
	}
}
