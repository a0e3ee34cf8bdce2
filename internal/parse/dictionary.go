package parse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Name dictionary correction limits.
const (
	// DictionaryCutoff is the minimum similarity for a correction.
	DictionaryCutoff = 0.88

	// DictionaryMaxLengthDelta bounds the rune-length difference between a
	// token and a correction candidate.
	DictionaryMaxLengthDelta = 2

	// DictionaryMinTokenLength is the shortest token that is ever corrected.
	DictionaryMinTokenLength = 3
)

// Dictionary is a read-only name frequency list used to repair single
// misread letters in names. A nil *Dictionary corrects nothing.
type Dictionary struct {
	freq  map[string]int
	words []string // sorted, for deterministic candidate order
}

var (
	sharedDict     *Dictionary
	sharedDictErr  error
	sharedDictOnce sync.Once
)

// SharedDictionary loads the dictionary at path on first use and returns
// the same instance for the life of the process. Paths passed on later
// calls are ignored.
func SharedDictionary(path string) (*Dictionary, error) {
	sharedDictOnce.Do(func() {
		sharedDict, sharedDictErr = LoadDictionary(path)
	})
	return sharedDict, sharedDictErr
}

// LoadDictionary reads a dictionary file. An empty path returns a nil
// dictionary and no error.
func LoadDictionary(path string) (*Dictionary, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open name dictionary: %w", err)
	}
	defer f.Close()

	d, err := ReadDictionary(f)
	if err != nil {
		return nil, fmt.Errorf("read name dictionary %s: %w", path, err)
	}
	return d, nil
}

// ReadDictionary parses "WORD [FREQUENCY]" lines. Blank lines and lines
// starting with # are skipped; words are upper-cased and the highest
// frequency seen for a word wins.
func ReadDictionary(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{freq: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		word := Upper(Clean(parts[0]))
		freq := 1
		if len(parts) > 1 {
			if n, err := strconv.Atoi(parts[1]); err == nil && n >= 0 {
				freq = n
			}
		}
		d.freq[word] = max(freq, d.freq[word])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	d.words = make([]string, 0, len(d.freq))
	for w := range d.freq {
		d.words = append(d.words, w)
	}
	sort.Strings(d.words)
	return d, nil
}

// Len returns the number of words in the dictionary.
func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.words)
}

// Correct upper-cases each token of text and replaces it with its closest
// dictionary word when that word is similar enough.
func (d *Dictionary) Correct(text string) string {
	if d == nil || len(d.words) == 0 || text == "" {
		return text
	}
	tokens := strings.Fields(text)
	for i, tok := range tokens {
		tokens[i] = d.correctToken(Upper(tok))
	}
	return strings.Join(tokens, " ")
}

func (d *Dictionary) correctToken(token string) string {
	n := len([]rune(token))
	if n < DictionaryMinTokenLength {
		return token
	}
	if _, ok := d.freq[token]; ok {
		return token
	}

	best, bestScore, bestFreq := "", 0.0, -1
	for _, w := range d.words {
		if abs(len([]rune(w))-n) > DictionaryMaxLengthDelta {
			continue
		}
		score := similarity(token, w)
		if score < DictionaryCutoff {
			continue
		}
		if score > bestScore || (score == bestScore && d.freq[w] > bestFreq) {
			best, bestScore, bestFreq = w, score, d.freq[w]
		}
	}
	if best == "" {
		return token
	}
	return best
}

// similarity is 1 - levenshtein(a, b) / max(len(a), len(b)) over runes.
func similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
