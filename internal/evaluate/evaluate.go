// Package evaluate scores predicted labels against ground truth.
package evaluate

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch reports truth and prediction slices of different length.
	ErrLengthMismatch = errors.New("truth and predictions differ in length")
	// ErrNoSamples reports an evaluation over zero samples.
	ErrNoSamples = errors.New("no samples to evaluate")
)

// ClassMetrics holds precision, recall and F1 for one class (or an average).
// Undefined ratios are reported as 0.
type ClassMetrics struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is a classification report.
type Report struct {
	Classes []string `json:"classes"`
	// Confusion[i][j] counts samples of class Classes[i] predicted as Classes[j].
	Confusion [][]int        `json:"confusion"`
	Accuracy  float64        `json:"accuracy"`
	PerClass  []ClassMetrics `json:"per_class"`
	Macro     ClassMetrics   `json:"macro_avg"`
	Weighted  ClassMetrics   `json:"weighted_avg"`
}

// Accuracy returns the share of predictions equal to the truth.
func Accuracy(truth, pred []string) (float64, error) {
	if err := check(truth, pred); err != nil {
		return 0, err
	}
	hits := 0
	for i := range truth {
		if truth[i] == pred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(truth)), nil
}

// ConfusionMatrix counts (truth, prediction) pairs over classes. Labels
// outside classes are ignored.
func ConfusionMatrix(truth, pred, classes []string) ([][]int, error) {
	if err := check(truth, pred); err != nil {
		return nil, err
	}
	pos := make(map[string]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}
	m := make([][]int, len(classes))
	for i := range m {
		m[i] = make([]int, len(classes))
	}
	for i := range truth {
		ti, ok1 := pos[truth[i]]
		pi, ok2 := pos[pred[i]]
		if ok1 && ok2 {
			m[ti][pi]++
		}
	}
	return m, nil
}

// Evaluate builds the full report. When classes is empty the classes are
// taken from truth then pred, in first-encounter order.
func Evaluate(truth, pred, classes []string) (*Report, error) {
	if err := check(truth, pred); err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		classes = encountered(truth, pred)
	}
	cm, err := ConfusionMatrix(truth, pred, classes)
	if err != nil {
		return nil, err
	}
	acc, err := Accuracy(truth, pred)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Classes:   classes,
		Confusion: cm,
		Accuracy:  acc,
		PerClass:  make([]ClassMetrics, len(classes)),
		Macro:     ClassMetrics{Class: "macro avg"},
		Weighted:  ClassMetrics{Class: "weighted avg"},
	}
	total := 0
	for i, c := range classes {
		tp := cm[i][i]
		support, predicted := 0, 0
		for j := range classes {
			support += cm[i][j]
			predicted += cm[j][i]
		}
		m := ClassMetrics{
			Class:     c,
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, support),
			Support:   support,
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		r.PerClass[i] = m
		total += support

		r.Macro.Precision += m.Precision
		r.Macro.Recall += m.Recall
		r.Macro.F1 += m.F1
		r.Weighted.Precision += m.Precision * float64(support)
		r.Weighted.Recall += m.Recall * float64(support)
		r.Weighted.F1 += m.F1 * float64(support)
	}

	if n := float64(len(classes)); n > 0 {
		r.Macro.Precision /= n
		r.Macro.Recall /= n
		r.Macro.F1 /= n
	}
	if total > 0 {
		r.Weighted.Precision /= float64(total)
		r.Weighted.Recall /= float64(total)
		r.Weighted.F1 /= float64(total)
	}
	r.Macro.Support = total
	r.Weighted.Support = total
	return r, nil
}

func check(truth, pred []string) error {
	if len(truth) != len(pred) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(truth), len(pred))
	}
	if len(truth) == 0 {
		return ErrNoSamples
	}
	return nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func encountered(lists ...[]string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, l := range lists {
		for _, v := range l {
			if _, ok := seen[v]; !ok {
				seen[v] = struct{}{}
				out = append(out, v)
			}
		}
	}
	return out
}
