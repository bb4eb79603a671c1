package nlp

import (
	"fmt"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer reduces a lowercase word to its dictionary base form.
// Implementations must be deterministic and safe for concurrent use.
type Lemmatizer interface {
	Lemma(word string) string
}

// GolemLemmatizer looks words up in golem's English lemma dictionary.
type GolemLemmatizer struct {
	lem *golem.Lemmatizer
}

// NewGolemLemmatizer loads the English dictionary. Loading decompresses the
// whole table, so build one per process and share it.
func NewGolemLemmatizer() (*GolemLemmatizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("failed to load english lemma dictionary: %w", err)
	}
	return &GolemLemmatizer{lem: lem}, nil
}

// Lemma returns the base form, or the word itself when the dictionary has no
// entry. Dictionary forms with anything but lowercase letters ("dry" maps to
// "spin-dry") are ignored.
func (g *GolemLemmatizer) Lemma(word string) string {
	if word == "" {
		return word
	}
	lemma := g.lem.Lemma(word)
	if !isLowerAlpha(lemma) {
		return word
	}
	return lemma
}

// MapLemmatizer is a fixed lemmatization table. Words missing from the table
// are returned unchanged.
type MapLemmatizer map[string]string

// Lemma implements Lemmatizer
func (m MapLemmatizer) Lemma(word string) string {
	if lemma, ok := m[word]; ok {
		return lemma
	}
	return word
}

// IdentityLemmatizer leaves every word untouched.
type IdentityLemmatizer struct{}

// Lemma implements Lemmatizer
func (IdentityLemmatizer) Lemma(word string) string { return word }
