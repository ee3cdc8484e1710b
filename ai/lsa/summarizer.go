package lsa

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/poiesic/minutes/ai"
)

const (
	// minDimensions is the floor on singular values kept when ranking.
	minDimensions = 3
	// reductionRatio is the share of singular values kept above the floor.
	reductionRatio = 1.0
	// smoothing dampens raw term frequencies inside a sentence.
	smoothing = 0.4
)

// ErrFactorization indicates the SVD did not converge.
var ErrFactorization = errors.New("lsa: singular value decomposition failed")

// Summarizer is an extractive LSA summarizer. It holds no mutable state and
// is safe for concurrent use.
type Summarizer struct{}

// New creates a Summarizer.
func New() *Summarizer {
	return &Summarizer{}
}

var _ ai.SummaryEngine = (*Summarizer)(nil)

// Summarize returns up to sentences sentences of text, ranked by LSA and
// presented in document order. Text with no content terms yields "".
func (s *Summarizer) Summarize(ctx context.Context, text string, profile ai.Profile, sentences int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if sentences < 1 {
		return "", nil
	}

	all := splitSentences(text)
	if len(all) == 0 {
		return "", nil
	}

	tok := newTokenizer(profile)
	sentenceTerms := make([][]string, len(all))
	vocab := make(map[string]int)
	for i, sentence := range all {
		sentenceTerms[i] = tok.terms(sentence)
		for _, term := range sentenceTerms[i] {
			if _, ok := vocab[term]; !ok {
				vocab[term] = len(vocab)
			}
		}
	}
	if len(vocab) == 0 {
		return "", nil
	}
	if len(all) <= sentences {
		return strings.Join(all, " "), nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	ranks, err := rankSentences(termMatrix(vocab, sentenceTerms))
	if err != nil {
		return "", err
	}

	order := make([]int, len(all))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ranks[order[a]] > ranks[order[b]]
	})
	chosen := order[:sentences]
	sort.Ints(chosen)

	picked := make([]string, len(chosen))
	for i, idx := range chosen {
		picked[i] = all[idx]
	}
	return strings.Join(picked, " "), nil
}

// termMatrix builds the smoothed term-by-sentence frequency matrix.
func termMatrix(vocab map[string]int, sentenceTerms [][]string) *mat.Dense {
	m := mat.NewDense(len(vocab), len(sentenceTerms), nil)
	for col, terms := range sentenceTerms {
		for _, term := range terms {
			row := vocab[term]
			m.Set(row, col, m.At(row, col)+1)
		}
	}

	rows, cols := m.Dims()
	for col := 0; col < cols; col++ {
		maxFreq := 0.0
		for row := 0; row < rows; row++ {
			maxFreq = math.Max(maxFreq, m.At(row, col))
		}
		if maxFreq == 0 {
			continue
		}
		for row := 0; row < rows; row++ {
			if f := m.At(row, col); f != 0 {
				m.Set(row, col, smoothing+(1-smoothing)*f/maxFreq)
			}
		}
	}
	return m
}

// rankSentences scores each column of the term matrix by
// sqrt(sum_k sigma_k^2 * v_jk^2) over the retained dimensions.
func rankSentences(m *mat.Dense) ([]float64, error) {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, ErrFactorization
	}
	sigma := svd.Values(nil)
	var v mat.Dense
	svd.VTo(&v)

	dims := max(minDimensions, int(float64(len(sigma))*reductionRatio))
	powered := make([]float64, len(sigma))
	for i, s := range sigma {
		if i < dims {
			powered[i] = s * s
		}
	}

	sentences, k := v.Dims()
	ranks := make([]float64, sentences)
	for j := 0; j < sentences; j++ {
		var sum float64
		for i := 0; i < k && i < len(powered); i++ {
			vij := v.At(j, i)
			sum += powered[i] * vij * vij
		}
		ranks[j] = math.Sqrt(sum)
	}
	return ranks, nil
}
