package ml

import (
	"sort"

	"golang.org/x/exp/rand"

	sterrors "github.com/edulytics/studentdw/pkg/errors"
)

// StratifiedSplit partitions sample indices into train and test sets,
// preserving the label proportions of y in both. Shuffling uses an
// explicitly seeded source, so a fixed seed yields the same split.
func StratifiedSplit(y []int, testFraction float64, seed uint64) (train, test []int, err error) {
	if len(y) == 0 {
		return nil, nil, sterrors.NewModelError("StratifiedSplit", "empty labels", sterrors.ErrEmptyData)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, sterrors.NewValueError("StratifiedSplit", "test fraction must be in (0, 1)")
	}

	byClass := make(map[int][]int)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	classes := make([]int, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	sort.Ints(classes)

	rng := rand.New(rand.NewSource(seed))
	for _, label := range classes {
		idx := byClass[label]
		rng.Shuffle(len(idx), func(i, j int) {
			idx[i], idx[j] = idx[j], idx[i]
		})

		nTest := int(float64(len(idx))*testFraction + 0.5)
		if nTest < 1 {
			nTest = 1
		}
		if nTest >= len(idx) {
			nTest = len(idx) - 1
		}

		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}

	sort.Ints(train)
	sort.Ints(test)
	return train, test, nil
}
