package lsa

import (
	"bufio"
	"embed"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/poiesic/minutes/ai"
)

//go:embed stopwords/*.txt
var stopwordFiles embed.FS

// loadStopWords reads the embedded list for profile. Unknown profiles get
// the English list.
func loadStopWords(profile ai.Profile) map[string]struct{} {
	data, err := stopwordFiles.ReadFile("stopwords/" + string(profile) + ".txt")
	if err != nil {
		data, _ = stopwordFiles.ReadFile("stopwords/english.txt")
	}
	words := make(map[string]struct{})
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words[w] = struct{}{}
		}
	}
	return words
}

// splitSentences breaks text on terminal punctuation followed by
// whitespace or end of input. Abbreviation handling is
// simple: a terminator directly followed by a lowercase letter does not
// end the sentence.
func splitSentences(text string) []string {
	text = norm.NFC.String(strings.TrimSpace(text))
	runes := []rune(text)
	var sentences []string
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		// swallow runs like "?!" or "..."
		for i+1 < len(runes) && (isTerminator(runes[i+1]) || isCloser(runes[i+1])) {
			i++
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) && !isWideTerminator(runes[i]) {
			continue
		}
		if next := nextNonSpace(runes, i+1); next >= 0 && unicode.IsLower(runes[next]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

func isWideTerminator(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}

func nextNonSpace(runes []rune, from int) int {
	for j := from; j < len(runes); j++ {
		if !unicode.IsSpace(runes[j]) {
			return j
		}
	}
	return -1
}

// tokenizer turns sentences into stemmed, stop-word-free terms.
type tokenizer struct {
	language  string
	stopWords map[string]struct{}
	fold      cases.Caser
}

func newTokenizer(profile ai.Profile) *tokenizer {
	return &tokenizer{
		language:  string(profile),
		stopWords: loadStopWords(profile),
		fold:      cases.Fold(),
	}
}

func (t *tokenizer) terms(sentence string) []string {
	words := strings.FieldsFunc(sentence, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(t.fold.String(w), "'")
		if w == "" {
			continue
		}
		if _, stop := t.stopWords[w]; stop {
			continue
		}
		if !containsLetter(w) {
			continue
		}
		out = append(out, t.stem(w))
	}
	return out
}

func (t *tokenizer) stem(word string) string {
	stemmed, err := snowball.Stem(word, t.language, true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
