package textanalysis

import (
	"context"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"
)

const (
	// tfSmoothing keeps absent terms from zeroing a sentence column.
	tfSmoothing = 0.4

	// maxSVDCells bounds the dense term-sentence matrix handed to the SVD.
	// Larger documents are ranked from the sparse column norms, which equal
	// the full-rank SVD weights.
	maxSVDCells = 200_000

	// ctxCheckEvery is how many sentences are processed between context checks.
	ctxCheckEvery = 256
)

// termCounts is one sentence column: raw counts keyed by dictionary row.
type termCounts map[int]float64

func (a *Analyzer) summarize(ctx context.Context, text string) (string, error) {
	sents := SplitSentences(text)
	if len(sents) == 0 {
		return "", nil
	}
	selected, err := a.selectSentences(ctx, sents)
	if err != nil {
		return "", err
	}
	return strings.Join(selected, " "), nil
}

// selectSentences keeps the top-ranked sentences, returned in document order.
func (a *Analyzer) selectSentences(ctx context.Context, sents []string) ([]string, error) {
	if len(sents) <= a.summarySentences {
		return append([]string(nil), sents...), nil
	}

	ranks, err := a.rankSentences(ctx, sents)
	if err != nil {
		return nil, err
	}
	order := make([]int, len(sents))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return ranks[order[i]] > ranks[order[j]]
	})

	top := append([]int(nil), order[:a.summarySentences]...)
	sort.Ints(top)

	out := make([]string, 0, len(top))
	for _, idx := range top {
		out = append(out, sents[idx])
	}
	return out, nil
}

// rankSentences scores each sentence by its weight in the SVD of the
// term-sentence matrix. All sentences score 0 when no content terms exist.
func (a *Analyzer) rankSentences(ctx context.Context, sents []string) ([]float64, error) {
	columns, terms, err := a.termColumns(ctx, sents)
	if err != nil {
		return nil, err
	}
	if terms == 0 {
		return make([]float64, len(sents)), nil
	}
	if terms*len(sents) > maxSVDCells {
		return columnNorms(columns, terms), nil
	}

	matrix := mat.NewDense(terms, len(sents), nil)
	for col, counts := range columns {
		for row, n := range counts {
			matrix.Set(row, col, n)
		}
	}
	normalizeTermFrequency(matrix)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return svdRanks(matrix), nil
}

// termColumns stems the content words of each sentence into dictionary rows.
func (a *Analyzer) termColumns(ctx context.Context, sents []string) ([]termCounts, int, error) {
	dictionary := make(map[string]int)
	columns := make([]termCounts, len(sents))
	for j, s := range sents {
		if j%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}
		counts := termCounts{}
		for _, tok := range a.res.Tokenize(s) {
			if !tok.IsContent() || !hasLetter(tok.Text) {
				continue
			}
			stem := a.res.Stem(strings.ToLower(tok.Text))
			row, ok := dictionary[stem]
			if !ok {
				row = len(dictionary)
				dictionary[stem] = row
			}
			counts[row]++
		}
		columns[j] = counts
	}
	return columns, len(dictionary), nil
}

// svdRanks returns sqrt(sum sigma_i^2 * v_ji^2) for each column j.
func svdRanks(matrix *mat.Dense) []float64 {
	_, cols := matrix.Dims()
	ranks := make([]float64, cols)

	var svd mat.SVD
	if ok := svd.Factorize(matrix, mat.SVDThin); !ok {
		return ranks
	}
	sigma := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	for j := range ranks {
		var sum float64
		for i, s := range sigma {
			x := v.At(j, i)
			sum += s * s * x * x
		}
		ranks[j] = math.Sqrt(sum)
	}
	return ranks
}

// columnNorms computes the Euclidean norm of each smoothed column without
// materializing the matrix. Absent terms contribute tfSmoothing each.
func columnNorms(columns []termCounts, terms int) []float64 {
	ranks := make([]float64, len(columns))
	for j, counts := range columns {
		var maxFreq float64
		for _, n := range counts {
			maxFreq = math.Max(maxFreq, n)
		}
		if maxFreq == 0 {
			continue
		}
		sum := float64(terms-len(counts)) * tfSmoothing * tfSmoothing
		for _, n := range counts {
			w := tfSmoothing + (1-tfSmoothing)*n/maxFreq
			sum += w * w
		}
		ranks[j] = math.Sqrt(sum)
	}
	return ranks
}

func normalizeTermFrequency(m *mat.Dense) {
	rows, cols := m.Dims()
	for c := 0; c < cols; c++ {
		var maxFreq float64
		for r := 0; r < rows; r++ {
			maxFreq = math.Max(maxFreq, m.At(r, c))
		}
		if maxFreq == 0 {
			continue
		}
		for r := 0; r < rows; r++ {
			m.Set(r, c, tfSmoothing+(1-tfSmoothing)*m.At(r, c)/maxFreq)
		}
	}
}
