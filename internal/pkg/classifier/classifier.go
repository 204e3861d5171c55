// internal/pkg/classifier/classifier.go
package classifier

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"regexp"
	"strings"
)

// Uncategorized is returned whenever the model cannot make a call.
const Uncategorized = "Uncategorized"

var wordPattern = regexp.MustCompile(`[a-zA-Z]+`)

// Sample is one labelled training document.
type Sample struct {
	Text  string
	Label string
}

// Classifier is a multinomial naive-Bayes text classifier over a
// bag-of-words model with Laplace smoothing. It is trained once at
// startup and is read-only afterwards, so Classify is safe for
// concurrent use.
type Classifier struct {
	classes     []string
	classDocs   map[string]int
	tokenCounts map[string]map[string]int
	totalTokens map[string]int
	vocab       map[string]struct{}
	totalDocs   int
}

// NewFromCSV trains a classifier from a two-column CSV of (text, label)
// rows. A header row with those column names is skipped.
func NewFromCSV(path string) (*Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	var samples []Sample
	for i, rec := range records {
		if len(rec) < 2 {
			continue
		}
		if i == 0 && strings.EqualFold(rec[0], "text") {
			continue
		}
		samples = append(samples, Sample{Text: rec[0], Label: rec[1]})
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("dataset %s contains no usable rows", path)
	}

	return Train(samples), nil
}

// Train builds a classifier from labelled samples.
func Train(samples []Sample) *Classifier {
	c := &Classifier{
		classDocs:   make(map[string]int),
		tokenCounts: make(map[string]map[string]int),
		totalTokens: make(map[string]int),
		vocab:       make(map[string]struct{}),
	}

	for _, sample := range samples {
		label := strings.TrimSpace(sample.Label)
		if label == "" {
			continue
		}

		if _, seen := c.classDocs[label]; !seen {
			c.classes = append(c.classes, label)
			c.tokenCounts[label] = make(map[string]int)
		}
		c.classDocs[label]++
		c.totalDocs++

		for _, tok := range tokenize(sample.Text) {
			c.tokenCounts[label][tok]++
			c.totalTokens[label]++
			c.vocab[tok] = struct{}{}
		}
	}

	return c
}

// Classify predicts the category for a text. Gibberish, empty input, or
// input with no vocabulary overlap falls back to Uncategorized.
func (c *Classifier) Classify(text string) string {
	category, _ := c.ClassifyWithConfidence(text)
	return category
}

// ClassifyWithConfidence also returns the posterior probability of the
// chosen category.
func (c *Classifier) ClassifyWithConfidence(text string) (string, float64) {
	if c == nil || c.totalDocs == 0 {
		return Uncategorized, 0
	}

	norm := strings.ToLower(strings.TrimSpace(text))
	if isGibberish(norm) {
		return Uncategorized, 0
	}

	tokens := tokenize(norm)
	known := tokens[:0:0]
	for _, tok := range tokens {
		if _, ok := c.vocab[tok]; ok {
			known = append(known, tok)
		}
	}
	if len(known) == 0 {
		return Uncategorized, 0
	}

	vocabSize := float64(len(c.vocab))
	scores := make([]float64, len(c.classes))

	for i, class := range c.classes {
		score := math.Log(float64(c.classDocs[class]) / float64(c.totalDocs))
		denom := float64(c.totalTokens[class]) + vocabSize
		for _, tok := range known {
			score += math.Log((float64(c.tokenCounts[class][tok]) + 1) / denom)
		}
		scores[i] = score
	}

	best := 0
	for i := range scores {
		if scores[i] > scores[best] {
			best = i
		}
	}

	// Normalise log scores into a posterior for the winning class.
	var total float64
	for _, score := range scores {
		total += math.Exp(score - scores[best])
	}

	return c.classes[best], 1 / total
}

// Classes returns the known category labels in training order.
func (c *Classifier) Classes() []string {
	out := make([]string, len(c.classes))
	copy(out, c.classes)
	return out
}

// isGibberish rejects input no model call should be made for: empty
// text, no alphabetic words, or a single very short word.
func isGibberish(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	words := wordPattern.FindAllString(text, -1)
	if len(words) == 0 {
		return true
	}
	if len(words) == 1 && len(words[0]) <= 2 {
		return true
	}
	return false
}

func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}
