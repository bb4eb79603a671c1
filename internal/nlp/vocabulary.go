package nlp

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

//go:embed symptoms.yaml
var defaultSymptomTable []byte

// phraseSeparator joins the parts of a multi-word synonym into one vocabulary key.
const phraseSeparator = "-"

// Concept is a canonical symptom name with its synonym spellings.
type Concept struct {
	Name     string   `yaml:"name"`
	Synonyms []string `yaml:"synonyms"`
}

// Phrase is a multi-word synonym matched on consecutive normalized tokens.
type Phrase struct {
	Key   string
	Parts []string
}

// Vocabulary is the flat set of recognized lemmatized symptom tokens.
// Every entry remembers which concepts contributed it.
type Vocabulary struct {
	concepts []Concept
	tokens   map[string][]string
	phrases  []Phrase
}

// DefaultVocabulary builds the vocabulary from the embedded symptom table.
func DefaultVocabulary(normalizer *Normalizer) (*Vocabulary, error) {
	return LoadVocabulary(bytes.NewReader(defaultSymptomTable), normalizer)
}

// LoadVocabulary reads a YAML symptom table and builds the vocabulary.
//
// Expected format:
//
//	concepts:
//	  - name: fever
//	    synonyms: [fever, pyrexia]
func LoadVocabulary(r io.Reader, normalizer *Normalizer) (*Vocabulary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read symptom table: %w", err)
	}

	var table struct {
		Concepts []Concept `yaml:"concepts"`
	}
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse symptom table: %w", err)
	}
	if len(table.Concepts) == 0 {
		return nil, fmt.Errorf("symptom table has no concepts")
	}

	return NewVocabulary(table.Concepts, normalizer), nil
}

// NewVocabulary flattens concepts into one lookup set. Single-word synonyms are
// lowercased, stripped and lemmatized without stopword or length filtering.
// Hyphenated synonyms become phrases whose parts go through the same steps
// with stopwords removed, so they line up with normalized input.
func NewVocabulary(concepts []Concept, normalizer *Normalizer) *Vocabulary {
	v := &Vocabulary{
		concepts: concepts,
		tokens:   make(map[string][]string),
	}
	phrases := make(map[string]Phrase)

	for _, concept := range concepts {
		for _, synonym := range concept.Synonyms {
			if !strings.Contains(synonym, phraseSeparator) {
				for _, field := range strings.Fields(StripNonAlpha(strings.ToLower(synonym))) {
					v.add(normalizer.lemma(field), concept.Name)
				}
				continue
			}

			var parts []string
			for _, piece := range strings.Split(synonym, phraseSeparator) {
				for _, field := range strings.Fields(StripNonAlpha(strings.ToLower(piece))) {
					if normalizer.IsStopword(field) {
						continue
					}
					parts = append(parts, normalizer.lemma(field))
				}
			}

			switch len(parts) {
			case 0:
			case 1:
				v.add(parts[0], concept.Name)
			default:
				key := strings.Join(parts, phraseSeparator)
				phrases[key] = Phrase{Key: key, Parts: parts}
				v.add(key, concept.Name)
			}
		}
	}

	v.phrases = lo.Values(phrases)
	// Longest phrases first so the extractor prefers the widest match.
	sort.Slice(v.phrases, func(i, j int) bool {
		if len(v.phrases[i].Parts) != len(v.phrases[j].Parts) {
			return len(v.phrases[i].Parts) > len(v.phrases[j].Parts)
		}
		return v.phrases[i].Key < v.phrases[j].Key
	})

	for token, names := range v.tokens {
		names = lo.Uniq(names)
		sort.Strings(names)
		v.tokens[token] = names
	}

	return v
}

func (v *Vocabulary) add(token, concept string) {
	if token == "" {
		return
	}
	v.tokens[token] = append(v.tokens[token], concept)
}

// Contains reports whether token is a recognized symptom token.
func (v *Vocabulary) Contains(token string) bool {
	_, ok := v.tokens[token]
	return ok
}

// Concepts returns the sorted concept names a token belongs to.
func (v *Vocabulary) Concepts(token string) []string {
	names, ok := v.tokens[token]
	if !ok {
		return nil
	}
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Tokens returns every recognized token, sorted.
func (v *Vocabulary) Tokens() []string {
	tokens := lo.Keys(v.tokens)
	sort.Strings(tokens)
	return tokens
}

// Phrases returns the multi-word entries, longest first.
func (v *Vocabulary) Phrases() []Phrase {
	out := make([]Phrase, len(v.phrases))
	copy(out, v.phrases)
	return out
}

// ConceptList returns the concepts the vocabulary was built from.
func (v *Vocabulary) ConceptList() []Concept {
	out := make([]Concept, len(v.concepts))
	copy(out, v.concepts)
	return out
}

// Len returns the number of recognized tokens.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}
