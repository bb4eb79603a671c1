package nlp

import (
	"strings"
	"unicode"
)

// minTokenLength is the shortest token that survives filtering.
const minTokenLength = 3

// Normalizer turns free text into the canonical token stream shared by the
// classifier and the symptom extractor.
type Normalizer struct {
	stopwords  map[string]struct{}
	lemmatizer Lemmatizer
}

// NewNormalizer creates a normalizer with the given stopword list and lemmatizer.
// A nil lemmatizer leaves tokens as they are.
func NewNormalizer(stopwords []string, lemmatizer Lemmatizer) *Normalizer {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	if lemmatizer == nil {
		lemmatizer = IdentityLemmatizer{}
	}
	return &Normalizer{stopwords: stops, lemmatizer: lemmatizer}
}

// NewEnglishNormalizer creates a normalizer with the English stopword list.
func NewEnglishNormalizer(lemmatizer Lemmatizer) *Normalizer {
	return NewNormalizer(englishStopwords, lemmatizer)
}

// Normalize returns the space-joined normalized tokens of text.
func (n *Normalizer) Normalize(text string) string {
	return strings.Join(n.Tokens(text), " ")
}

// Tokens lowercases text, strips everything but ASCII letters and whitespace,
// drops stopwords and short tokens, and lemmatizes what is left. A lemma that
// lands on a stopword or a short token is dropped as well, so normalized text
// normalizes to itself.
func (n *Normalizer) Tokens(text string) []string {
	fields := strings.Fields(StripNonAlpha(strings.ToLower(text)))

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) < minTokenLength || n.IsStopword(field) {
			continue
		}
		token := n.lemma(field)
		if len(token) < minTokenLength || n.IsStopword(token) {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// lemma returns the lemmatizer's base form of word when that form is lowercase
// alphabetic and is its own lemma; otherwise word itself.
func (n *Normalizer) lemma(word string) string {
	lemma := n.lemmatizer.Lemma(word)
	if lemma == word {
		return word
	}
	if !isLowerAlpha(lemma) || n.lemmatizer.Lemma(lemma) != lemma {
		return word
	}
	return lemma
}

// IsStopword reports whether word is in the stopword set.
func (n *Normalizer) IsStopword(word string) bool {
	_, ok := n.stopwords[word]
	return ok
}

// Lemmatizer returns the lemmatizer used for surviving tokens.
func (n *Normalizer) Lemmatizer() Lemmatizer {
	return n.lemmatizer
}

func isLowerAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// StripNonAlpha removes every rune that is neither an ASCII letter nor
// whitespace. Whitespace is kept so callers can split on it.
func StripNonAlpha(text string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return r
		case unicode.IsSpace(r):
			return r
		default:
			return -1
		}
	}, text)
}
