package linear

// lbfgs keeps the last m curvature pairs for the two-loop recursion.
type lbfgs struct {
	m    int
	s    [][]float64
	y    [][]float64
	rho  []float64
	k    int
	size int
}

func newLBFGS(m int) *lbfgs {
	return &lbfgs{
		m:   m,
		s:   make([][]float64, m),
		y:   make([][]float64, m),
		rho: make([]float64, m),
	}
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// slot maps the i-th oldest stored pair to its ring buffer position.
func (l *lbfgs) slot(i int) int {
	return ((l.k-l.size+i)%l.m + l.m) % l.m
}

func (l *lbfgs) update(s, y []float64) {
	sy := dot(s, y)
	if sy <= 0 {
		return
	}
	idx := l.k % l.m
	l.s[idx] = append([]float64(nil), s...)
	l.y[idx] = append([]float64(nil), y...)
	l.rho[idx] = 1.0 / sy
	l.k++
	if l.size < l.m {
		l.size++
	}
}

// computeDirection returns the descent direction -H*grad.
func (l *lbfgs) computeDirection(grad []float64) []float64 {
	q := append([]float64(nil), grad...)
	if l.size == 0 {
		for i := range q {
			q[i] = -q[i]
		}
		return q
	}

	alpha := make([]float64, l.size)
	for i := l.size - 1; i >= 0; i-- {
		idx := l.slot(i)
		a := l.rho[idx] * dot(l.s[idx], q)
		alpha[i] = a
		for j := range q {
			q[j] -= a * l.y[idx][j]
		}
	}

	latest := l.slot(l.size - 1)
	if yy := dot(l.y[latest], l.y[latest]); yy > 0 {
		gamma := dot(l.s[latest], l.y[latest]) / yy
		for i := range q {
			q[i] *= gamma
		}
	}

	for i := range l.size {
		idx := l.slot(i)
		beta := l.rho[idx] * dot(l.y[idx], q)
		for j := range q {
			q[j] += (alpha[i] - beta) * l.s[idx][j]
		}
	}

	for i := range q {
		q[i] = -q[i]
	}
	return q
}
