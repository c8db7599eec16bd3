package chart

import (
	"github.com/KaramelBytes/loanlens-cli/internal/dataset"
)

// Age bucket edges; each bucket is [edge[i], edge[i+1]).
var ageEdges = []float64{18, 25, 35, 50, 65, 100}

// AgeBucketLabels lists bucket labels in ascending age order.
var AgeBucketLabels = []string{"18-25", "26-35", "36-50", "51-65", "65+"}

// Bucketize maps an age to its bucket label. Ages outside [18,100) have none.
func Bucketize(age float64) (string, bool) {
	for i := 0; i < len(ageEdges)-1; i++ {
		if age >= ageEdges[i] && age < ageEdges[i+1] {
			return AgeBucketLabels[i], true
		}
	}
	return "", false
}

// AgeBuckets projects the age column of ds into bucket labels, one per row.
// Rows without a bucket get "". ds is left untouched.
func AgeBuckets(ds *dataset.Dataset) ([]string, error) {
	ages, err := ds.Floats(dataset.ColAge)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(ages))
	for i, a := range ages {
		out[i], _ = Bucketize(a)
	}
	return out, nil
}
