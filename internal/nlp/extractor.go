package nlp

import "strings"

// Match is a recognized symptom token with the concepts it may stand for.
type Match struct {
	Token    string
	Concepts []string
}

// Extractor finds vocabulary tokens in normalized text.
type Extractor struct {
	vocab *Vocabulary
}

// NewExtractor creates an extractor over vocab.
func NewExtractor(vocab *Vocabulary) *Extractor {
	return &Extractor{vocab: vocab}
}

// Vocabulary returns the vocabulary the extractor matches against.
func (e *Extractor) Vocabulary() *Vocabulary {
	return e.vocab
}

// Extract returns the recognized tokens of normalized text, each once, in order
// of first appearance. The result is always a subset of the vocabulary.
func (e *Extractor) Extract(normalized string) []string {
	matches := e.ExtractMatches(normalized)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Token
	}
	return out
}

// ExtractMatches is Extract with concept information attached.
func (e *Extractor) ExtractMatches(normalized string) []Match {
	tokens := strings.Fields(normalized)
	seen := make(map[string]struct{})
	var matches []Match

	emit := func(token string) {
		if _, dup := seen[token]; dup {
			return
		}
		seen[token] = struct{}{}
		matches = append(matches, Match{Token: token, Concepts: e.vocab.Concepts(token)})
	}

	for i := 0; i < len(tokens); {
		if phrase, ok := e.phraseAt(tokens, i); ok {
			emit(phrase.Key)
			i += len(phrase.Parts)
			continue
		}
		if e.vocab.Contains(tokens[i]) {
			emit(tokens[i])
		}
		i++
	}

	return matches
}

func (e *Extractor) phraseAt(tokens []string, i int) (Phrase, bool) {
	for _, phrase := range e.vocab.phrases {
		if i+len(phrase.Parts) > len(tokens) {
			continue
		}
		matched := true
		for j, part := range phrase.Parts {
			if tokens[i+j] != part {
				matched = false
				break
			}
		}
		if matched {
			return phrase, true
		}
	}
	return Phrase{}, false
}
