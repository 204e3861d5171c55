package classifier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainingSamples() []Sample {
	return []Sample{
		{Text: "broken faucet leaking water in the restroom", Label: "Plumbing"},
		{Text: "water pipe burst near the gymnasium sink", Label: "Plumbing"},
		{Text: "clogged toilet on the second floor", Label: "Plumbing"},
		{Text: "flickering lights in the hallway", Label: "Electrical"},
		{Text: "power outlet sparking in the computer lab", Label: "Electrical"},
		{Text: "broken light switch in room 204", Label: "Electrical"},
		{Text: "cracked window glass in the library", Label: "Facilities"},
		{Text: "broken chair and damaged desk in classroom", Label: "Facilities"},
		{Text: "door hinge loose at the main entrance", Label: "Facilities"},
	}
}

func TestClassifyKnownCategories(t *testing.T) {
	c := Train(trainingSamples())

	tests := []struct {
		text string
		want string
	}{
		{"the faucet in the restroom is leaking water everywhere", "Plumbing"},
		{"lights keep flickering and the outlet is sparking", "Electrical"},
		{"there is a broken chair in my classroom", "Facilities"},
	}

	for _, tt := range tests {
		got, confidence := c.ClassifyWithConfidence(tt.text)
		assert.Equal(t, tt.want, got, "text: %s", tt.text)
		assert.Greater(t, confidence, 0.0)
	}
}

func TestClassifyGibberishFallsBack(t *testing.T) {
	c := Train(trainingSamples())

	for _, text := range []string{"", "   ", "12345 !!!", "ab"} {
		assert.Equal(t, Uncategorized, c.Classify(text), "text: %q", text)
	}
}

func TestClassifyUnknownVocabularyFallsBack(t *testing.T) {
	c := Train(trainingSamples())
	assert.Equal(t, Uncategorized, c.Classify("zzzz qqqq wwww"))
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	c := Train(trainingSamples())
	assert.Equal(t, c.Classify("LEAKING WATER FAUCET"), c.Classify("leaking water faucet"))
}

func TestUntrainedClassifierFallsBack(t *testing.T) {
	c := Train(nil)
	assert.Equal(t, Uncategorized, c.Classify("leaking faucet"))

	var nilClassifier *Classifier
	assert.Equal(t, Uncategorized, nilClassifier.Classify("leaking faucet"))
}

func TestNewFromCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.csv")

	data := "text,label\n" +
		"leaking faucet in restroom,Plumbing\n" +
		"flickering hallway lights,Electrical\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	c, err := NewFromCSV(path)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Plumbing", "Electrical"}, c.Classes())
	assert.Equal(t, "Plumbing", c.Classify("the faucet is leaking"))
}

func TestNewFromCSVMissingFile(t *testing.T) {
	_, err := NewFromCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNewFromCSVEmptyDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.csv")
	require.NoError(t, os.WriteFile(path, []byte("text,label\n"), 0o644))

	_, err := NewFromCSV(path)
	assert.Error(t, err)
}
