package linear

import (
	"log/slog"
	"math"

	"github.com/happyhackingspace/featvec/vector"
)

// TrainConfig holds training configuration.
type TrainConfig struct {
	C       float64 // inverse L2 regularization strength
	MaxIter int
	Epsilon float64 // stop when the largest gradient component falls below this
}

// DefaultTrainConfig returns default training config.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		C:       5.0,
		MaxIter: 100,
		Epsilon: 1e-5,
	}
}

// example is a training vector in dense-index form.
type example struct {
	idx []int
	val []float64
	y   float64 // +1 or -1
}

// Train fits a binary logistic regression model. ys[i] marks xs[i] as a
// positive example.
func Train(xs []vector.Sparse, ys []bool, config TrainConfig) *Model {
	dim := 0
	data := make([]example, len(xs))
	for i, x := range xs {
		if d := x.Dim(); d > dim {
			dim = d
		}
		ex := example{y: -1}
		if ys[i] {
			ex.y = 1
		}
		x.Each(func(idx int, val float64) {
			ex.idx = append(ex.idx, idx)
			ex.val = append(ex.val, val)
		})
		data[i] = ex
	}

	reg := config.C
	if reg <= 0 {
		reg = 5.0
	}
	eps := config.Epsilon
	if eps <= 0 {
		eps = 1e-5
	}

	// params layout: [w_0 ... w_{dim-1} | bias]
	numParams := dim + 1
	params := make([]float64, numParams)
	lbfgs := newLBFGS(10)

	loss, grad := objective(data, params, dim, reg)
	for iter := range config.MaxIter {
		dir := lbfgs.computeDirection(grad)
		step, newLoss := lineSearch(data, params, dir, dim, reg, loss)
		if step == 0 {
			break
		}

		s := make([]float64, numParams)
		for i := range numParams {
			s[i] = step * dir[i]
			params[i] += s[i]
		}

		_, newGrad := objective(data, params, dim, reg)
		yVec := make([]float64, numParams)
		for i := range numParams {
			yVec[i] = newGrad[i] - grad[i]
		}
		lbfgs.update(s, yVec)
		loss, grad = newLoss, newGrad

		if maxAbs(grad) < eps {
			slog.Debug("Logistic regression converged", "iterations", iter+1, "loss", loss)
			break
		}
	}

	model := &Model{Weights: make(map[int]float64), Bias: params[dim]}
	for i := range dim {
		if params[i] != 0 {
			model.Weights[i] = params[i]
		}
	}
	return model
}

func objective(data []example, params []float64, dim int, c float64) (float64, []float64) {
	grad := make([]float64, len(params))
	loss := 0.0

	for _, ex := range data {
		z := params[dim]
		for k, idx := range ex.idx {
			z += params[idx] * ex.val[k]
		}
		margin := ex.y * z
		loss += logOnePlusExp(-margin)

		// d/dz log(1+exp(-y z)) = -y * sigmoid(-y z)
		coef := -ex.y * sigmoid(-margin)
		for k, idx := range ex.idx {
			grad[idx] += coef * ex.val[k]
		}
		grad[dim] += coef
	}

	regCoeff := 1.0 / c
	for i := range dim {
		loss += 0.5 * regCoeff * params[i] * params[i]
		grad[i] += regCoeff * params[i]
	}
	return loss, grad
}

func lineSearch(data []example, params, dir []float64, dim int, c, currentLoss float64) (float64, float64) {
	step := 1.0
	wNew := make([]float64, len(params))
	for trial := 0; trial < 20; trial++ {
		for i := range params {
			wNew[i] = params[i] + step*dir[i]
		}
		newLoss, _ := objective(data, wNew, dim, c)
		if newLoss < currentLoss {
			return step, newLoss
		}
		step *= 0.5
	}
	return 0, currentLoss
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// logOnePlusExp computes log(1+exp(x)) without overflow.
func logOnePlusExp(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}
