// Package split partitions a table into stratified train and test sets.
package split

import (
	"math"
	"math/rand"
	"sort"

	"creditrisk/domain/table"
	"creditrisk/internal/errors"
)

const (
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
)

// Partition is one side of a split. Rows are indices into the source
// table; Features excludes the label column, which is held in Labels.
type Partition struct {
	Rows     []int         `json:"rows"`
	Features *table.Table  `json:"-"`
	Labels   *table.Column `json:"-"`
}

// Len returns the number of rows in the partition
func (p Partition) Len() int {
	return len(p.Rows)
}

// Table returns the partition with the label column appended last
func (p Partition) Table() *table.Table {
	cols := make([]*table.Column, 0, p.Features.NumCols()+1)
	cols = append(cols, p.Features.Columns()...)
	cols = append(cols, p.Labels)
	return table.MustNew(cols...)
}

// Result holds the train and test partitions
type Result struct {
	Train Partition
	Test  Partition
}

// Split divides t into train and test partitions stratified on label.
// The test side gets ceil(testFraction·n) rows, apportioned across classes
// by largest remainder. The same seed always produces the same split.
func Split(t *table.Table, label string, testFraction float64, seed int64) (*Result, error) {
	if math.IsNaN(testFraction) || testFraction <= 0 || testFraction >= 1 {
		return nil, errors.InvalidArgument("test fraction must be in (0, 1), got %v", testFraction)
	}
	labels, ok := t.Column(label)
	if !ok {
		return nil, errors.InvalidArgument("label column %q not found", label)
	}

	classes, byClass, err := groupByClass(labels)
	if err != nil {
		return nil, err
	}

	n := t.NumRows()
	nTest := HoldoutSize(n, testFraction)
	if nTest < len(classes) || n-nTest < len(classes) {
		return nil, errors.InvalidArgument(
			"cannot stratify %d rows into %d test and %d train rows across %d classes",
			n, nTest, n-nTest, len(classes))
	}

	quotas := apportion(classes, byClass, nTest, n)

	rng := rand.New(rand.NewSource(seed))
	var trainRows, testRows []int
	for _, class := range classes {
		rows := append([]int(nil), byClass[class]...)
		rng.Shuffle(len(rows), func(i, j int) { rows[i], rows[j] = rows[j], rows[i] })
		testRows = append(testRows, rows[:quotas[class]]...)
		trainRows = append(trainRows, rows[quotas[class]:]...)
	}
	rng.Shuffle(len(trainRows), func(i, j int) { trainRows[i], trainRows[j] = trainRows[j], trainRows[i] })
	rng.Shuffle(len(testRows), func(i, j int) { testRows[i], testRows[j] = testRows[j], testRows[i] })

	features := t.Without(label)
	return &Result{
		Train: Partition{Rows: trainRows, Features: features.Take(trainRows), Labels: labels.Take(trainRows)},
		Test:  Partition{Rows: testRows, Features: features.Take(testRows), Labels: labels.Take(testRows)},
	}, nil
}

// HoldoutSize is ceil(testFraction·n), ignoring float error below 1e-9 so
// that 0.7·10 is 7 rather than 8
func HoldoutSize(n int, testFraction float64) int {
	return int(math.Ceil(testFraction*float64(n) - 1e-9))
}

// groupByClass returns the sorted class keys and the rows of each class
func groupByClass(labels *table.Column) ([]string, map[string][]int, error) {
	byClass := make(map[string][]int)
	for i, v := range labels.Values {
		if v.IsMissing() {
			return nil, nil, errors.InvalidArgument("label column %q is missing a value at row %d", labels.Name, i)
		}
		key := v.String()
		byClass[key] = append(byClass[key], i)
	}

	classes := make([]string, 0, len(byClass))
	for class, rows := range byClass {
		if len(rows) < 2 {
			return nil, nil, errors.InvalidArgument("class %q of %q has %d row; stratification needs at least 2", class, labels.Name, len(rows))
		}
		classes = append(classes, class)
	}
	sort.Strings(classes)
	return classes, byClass, nil
}

// apportion distributes nTest test rows across classes by largest
// remainder, so every class gets floor or ceil of its exact share. A class
// left absent from either side borrows a row from another class only when
// both quotas stay within floor..ceil.
func apportion(classes []string, byClass map[string][]int, nTest, n int) map[string]int {
	type share struct {
		class     string
		remainder float64
	}

	quotas := make(map[string]int, len(classes))
	floors := make(map[string]int, len(classes))
	ceils := make(map[string]int, len(classes))
	shares := make([]share, 0, len(classes))
	assigned := 0
	for _, class := range classes {
		exact := float64(nTest) * float64(len(byClass[class])) / float64(n)
		q := int(math.Floor(exact))
		floors[class], ceils[class] = q, q
		if exact > float64(q) {
			ceils[class] = q + 1
		}
		quotas[class] = q
		assigned += q
		shares = append(shares, share{class: class, remainder: exact - float64(q)})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].remainder > shares[j].remainder
	})
	for i := 0; assigned < nTest; i++ {
		quotas[shares[i%len(shares)].class]++
		assigned++
	}

	for _, class := range classes {
		size := len(byClass[class])
		if quotas[class] == 0 && ceils[class] >= 1 {
			if donor := findDonor(classes, byClass, quotas, floors, ceils, class, -1); donor != "" {
				quotas[donor]--
				quotas[class]++
			}
		}
		if quotas[class] == size && floors[class] <= size-1 {
			if donor := findDonor(classes, byClass, quotas, floors, ceils, class, +1); donor != "" {
				quotas[donor]++
				quotas[class]--
			}
		}
	}
	return quotas
}

// findDonor picks the class, other than skip, whose test quota can move by
// delta while staying within its floor..ceil and keeping a row on each side
func findDonor(classes []string, byClass map[string][]int, quotas, floors, ceils map[string]int, skip string, delta int) string {
	for _, class := range classes {
		if class == skip {
			continue
		}
		q := quotas[class] + delta
		if q >= floors[class] && q <= ceils[class] && q >= 1 && q <= len(byClass[class])-1 {
			return class
		}
	}
	return ""
}
