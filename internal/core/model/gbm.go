package model

// Config are the boosting hyperparameters. The defaults mirror the
// settings the production model was tuned to.
type Config struct {
	NTrees          int     `json:"n_trees"`
	MaxDepth        int     `json:"max_depth"`
	LearningRate    float64 `json:"learning_rate"`
	MinChildSamples int     `json:"min_child_samples"`
}

var DefaultConfig = Config{
	NTrees:          200,
	MaxDepth:        4,
	LearningRate:    0.05,
	MinChildSamples: 20,
}

// fitEnsemble boosts squared-error regression trees on weighted samples:
// start from the weighted mean, then repeatedly fit a tree to the current
// residuals and add it scaled by the learning rate.
func fitEnsemble(x [][]float64, y, w []float64, cfg Config) (float64, []*Tree) {
	indices := make([]int, len(x))
	for i := range indices {
		indices[i] = i
	}

	base := weightedMean(y, w, indices)

	pred := make([]float64, len(x))
	resid := make([]float64, len(x))
	for i := range pred {
		pred[i] = base
	}

	trees := make([]*Tree, 0, cfg.NTrees)
	for t := 0; t < cfg.NTrees; t++ {
		for i := range resid {
			resid[i] = y[i] - pred[i]
		}
		tree := fitTree(x, resid, w, indices, cfg.MaxDepth, cfg.MinChildSamples)
		trees = append(trees, tree)
		for i := range pred {
			pred[i] += cfg.LearningRate * tree.Predict(x[i])
		}
	}
	return base, trees
}
