// Package lsa implements an extractive summarizer based on latent semantic
// analysis.
//
// Text is split into sentences; each sentence becomes a column of a
// term-frequency matrix built from case-folded, stemmed words with stop
// words removed. The matrix is factorized with a thin SVD and each sentence
// is ranked by the length of its projection onto the singular vectors,
// weighted by the squared singular values. The highest ranked sentences are
// returned in their original order.
package lsa
