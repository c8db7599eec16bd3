package regression

import (
	"math"
	"math/rand"
)

// Split holds train/test partitions of a single feature and its target.
type Split struct {
	XTrain, XTest []float64
	YTrain, YTest []float64
}

// TrainTestSplit partitions x, y by a seeded permutation. The first
// ceil(testRatio*n) permuted indices form the test set, so the same seed and
// input order always give the same split.
func TrainTestSplit(x, y []float64, testRatio float64, seed int64) Split {
	n := len(x)
	rng := rand.New(rand.NewSource(seed))
	indices := rng.Perm(n)
	nTest := int(math.Ceil(float64(n)*testRatio - 1e-9))
	if nTest > n {
		nTest = n
	}
	var s Split
	for i, idx := range indices {
		if i < nTest {
			s.XTest = append(s.XTest, x[idx])
			s.YTest = append(s.YTest, y[idx])
		} else {
			s.XTrain = append(s.XTrain, x[idx])
			s.YTrain = append(s.YTrain, y[idx])
		}
	}
	return s
}
