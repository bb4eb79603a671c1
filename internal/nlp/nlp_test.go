package nlp

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	golemOnce sync.Once
	golemLem  *GolemLemmatizer
	golemErr  error
)

func englishLemmatizer(t *testing.T) *GolemLemmatizer {
	t.Helper()
	golemOnce.Do(func() {
		golemLem, golemErr = NewGolemLemmatizer()
	})
	require.NoError(t, golemErr)
	return golemLem
}

var testLemmas = MapLemmatizer{
	"aches":     "ache",
	"headaches": "headache",
	"running":   "run",
	"joints":    "joint",
	"coughing":  "cough",
}

func TestNormalize(t *testing.T) {
	n := NewEnglishNormalizer(testLemmas)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"stopwords removed", "I have severe headache and persistent fever", "severe headache persistent fever"},
		{"lemmatized", "Running nose, headaches and aches in my joints", "run nose headache ache joint"},
		{"punctuation and digits stripped", "Fever!!! 102F since 3 days; coughing...", "fever since days cough"},
		{"hyphen glued", "shortness-of-breath at night", "shortnessofbreath night"},
		{"short tokens dropped", "ok so my leg is sore", "leg sore"},
		{"tabs and newlines", "itchy\tskin\nrash", "itchy skin rash"},
		{"empty", "", ""},
		{"garbage", "!!! 123 ??", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewEnglishNormalizer(testLemmas)

	inputs := []string{
		"I have severe headache and persistent fever",
		"Running nose, headaches and aches in my joints",
		"My skin has been peeling and there are red patches on my elbows",
		"   ",
	}

	for _, input := range inputs {
		once := n.Normalize(input)
		assert.Equal(t, once, n.Normalize(once), "input %q", input)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := NewEnglishNormalizer(testLemmas)
	input := "Chills, sweating and a high fever for two days"
	first := n.Normalize(input)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, n.Normalize(input))
	}
}

func TestNormalizerWithoutLemmatizer(t *testing.T) {
	n := NewNormalizer([]string{"THE"}, nil)
	assert.Equal(t, "cat sat mat", n.Normalize("The cat sat on the mat"))
}

func TestStripNonAlpha(t *testing.T) {
	assert.Equal(t, "abc def", StripNonAlpha("a-b.c d3e_f"))
	assert.Equal(t, "caf ", StripNonAlpha("café "))
}

func TestGolemLemmatizer(t *testing.T) {
	lem := englishLemmatizer(t)

	assert.Equal(t, "ache", lem.Lemma("aches"))
	assert.Equal(t, "headache", lem.Lemma("headaches"))
	assert.Equal(t, "fever", lem.Lemma("fever"))
	assert.Equal(t, "", lem.Lemma(""))
	assert.Equal(t, "dry", lem.Lemma("dry"))
}

func TestNormalizeWithEnglishLemmatizer(t *testing.T) {
	n := NewEnglishNormalizer(englishLemmatizer(t))

	inputs := []string{
		"dry cough",
		"red, itchy, dry, scaly patches",
		"vomiting and throbbing pain",
		"My skin is dry and the dried patches keep peeling",
		"I have been experiencing joint pain in my knees and hips, and I feel exhausted",
		"There are silvery, scaly plaques covering my elbows; they bleed when I scratch them",
		"I've had a high fever, chills and sweating, along with a headache and muscle aches",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once := n.Normalize(input)
			assert.Equal(t, once, n.Normalize(once))
			assert.Equal(t, once, StripNonAlpha(once))
			for _, token := range strings.Fields(once) {
				assert.GreaterOrEqual(t, len(token), minTokenLength, "token %q", token)
				assert.False(t, n.IsStopword(token), "token %q", token)
			}
		})
	}

	assert.Equal(t, "dry cough", n.Normalize("dry cough"))
}

func TestNormalizeRejectsUnusableLemmas(t *testing.T) {
	n := NewEnglishNormalizer(MapLemmatizer{
		"ached":  "ache",
		"ache":   "aching",
		"axes":   "ax",
		"wounds": "wound-up",
		"doings": "doing",
	})

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unstable lemma keeps the word", "ached back", "ached back"},
		{"short lemma dropped", "axes hurt", "hurt"},
		{"non-alphabetic lemma keeps the word", "open wounds", "open wounds"},
		{"stopword lemma dropped", "daily doings", "daily"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, n.Normalize(got))
		})
	}
}

func TestExtractHeadacheAndFever(t *testing.T) {
	lem := englishLemmatizer(t)
	n := NewEnglishNormalizer(lem)
	vocab, err := DefaultVocabulary(n)
	require.NoError(t, err)
	ex := NewExtractor(vocab)

	normalized := n.Normalize("I have severe headache and persistent fever")
	tokens := strings.Fields(normalized)
	assert.Contains(t, tokens, "severe")
	assert.Contains(t, tokens, "headache")
	assert.Contains(t, tokens, "persistent")
	assert.Contains(t, tokens, "fever")
	assert.NotContains(t, tokens, "have")
	assert.NotContains(t, tokens, "and")

	assert.ElementsMatch(t, []string{"headache", "fever"}, ex.Extract(normalized))
}

func TestExtractIsSubsetOfVocabulary(t *testing.T) {
	lem := englishLemmatizer(t)
	n := NewEnglishNormalizer(lem)
	vocab, err := DefaultVocabulary(n)
	require.NoError(t, err)
	ex := NewExtractor(vocab)

	inputs := []string{
		"Vomiting, nausea and dizziness since this morning",
		"I feel anxiety, insomnia and constant fatigue",
		"There is a rash with itching and swelling around the ankle",
		"memory loss and blood loss after the accident",
		"nothing relevant here at all",
		"",
	}

	for _, input := range inputs {
		for _, token := range ex.Extract(n.Normalize(input)) {
			assert.True(t, vocab.Contains(token), "%q extracted from %q is not in the vocabulary", token, input)
		}
	}
}

func TestVocabularyFlattensConcepts(t *testing.T) {
	n := NewEnglishNormalizer(IdentityLemmatizer{})
	vocab, err := DefaultVocabulary(n)
	require.NoError(t, err)

	assert.True(t, vocab.Contains("pyrexia"))
	assert.True(t, vocab.Contains("emesis"))
	assert.Equal(t, []string{"nausea", "vomiting"}, vocab.Concepts("emesis"))
	assert.Equal(t, []string{"seizures"}, vocab.Concepts("epilepsy"))
	assert.Nil(t, vocab.Concepts("severe"))
	assert.Len(t, vocab.ConceptList(), 35)
	assert.Equal(t, vocab.Len(), len(vocab.Tokens()))
}

func TestVocabularyPhrases(t *testing.T) {
	n := NewEnglishNormalizer(IdentityLemmatizer{})
	vocab, err := DefaultVocabulary(n)
	require.NoError(t, err)

	keys := make([]string, 0)
	for _, p := range vocab.Phrases() {
		keys = append(keys, p.Key)
	}
	assert.ElementsMatch(t, []string{"blood-loss", "blurred-vision", "memory-loss"}, keys)

	assert.True(t, vocab.Contains("memory-loss"))
	assert.False(t, vocab.Contains("memory"))
	assert.False(t, vocab.Contains("loss"))
	assert.Equal(t, []string{"bleeding"}, vocab.Concepts("blood-loss"))
}

func TestExtractPhrases(t *testing.T) {
	n := NewEnglishNormalizer(IdentityLemmatizer{})
	vocab, err := DefaultVocabulary(n)
	require.NoError(t, err)
	ex := NewExtractor(vocab)

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"two phrases", "I noticed some blood loss and memory loss", []string{"blood-loss", "memory-loss"}},
		{"phrase parts alone", "blood test showed memory issues", []string{}},
		{"mixed with tokens", "vertigo then blurred vision and vertigo again", []string{"vertigo", "blurred-vision"}},
		{"hyphenated input is glued", "memory-loss reported", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ex.Extract(n.Normalize(tt.input)))
		})
	}
}

func TestExtractMatchesReportsConcepts(t *testing.T) {
	n := NewEnglishNormalizer(IdentityLemmatizer{})
	vocab, err := DefaultVocabulary(n)
	require.NoError(t, err)
	ex := NewExtractor(vocab)

	matches := ex.ExtractMatches(n.Normalize("emesis and pyrexia and emesis"))
	require.Len(t, matches, 2)
	assert.Equal(t, Match{Token: "emesis", Concepts: []string{"nausea", "vomiting"}}, matches[0])
	assert.Equal(t, Match{Token: "pyrexia", Concepts: []string{"fever"}}, matches[1])
}

func TestLoadVocabularyErrors(t *testing.T) {
	n := NewEnglishNormalizer(nil)

	_, err := LoadVocabulary(strings.NewReader("concepts: [unterminated"), n)
	assert.Error(t, err)

	_, err = LoadVocabulary(strings.NewReader("concepts: []"), n)
	assert.Error(t, err)

	vocab, err := LoadVocabulary(strings.NewReader("concepts:\n  - name: itch\n    synonyms: [Itching, pruritus]\n"), n)
	require.NoError(t, err)
	assert.Equal(t, []string{"itching", "pruritus"}, vocab.Tokens())
}
