package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
)

// ErrCorpus marks a training corpus that cannot be used.
var ErrCorpus = errors.New("invalid training corpus")

// Sample is one labelled symptom description.
type Sample struct {
	Text  string
	Label string
}

// Load reads a CSV corpus from path.
func Load(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorpus, err)
	}
	defer f.Close()

	samples, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// Read parses a CSV corpus whose header names a "text" and a "label" column.
// Other columns are ignored. Rows with an empty text or label are skipped.
func Read(r io.Reader) ([]Sample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrCorpus)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %w", ErrCorpus, err)
	}

	textCol, labelCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "text":
			textCol = i
		case "label":
			labelCol = i
		}
	}
	if textCol < 0 || labelCol < 0 {
		return nil, fmt.Errorf("%w: header must contain text and label columns, got %v", ErrCorpus, header)
	}

	var samples []Sample
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrCorpus, line, err)
		}
		if textCol >= len(record) || labelCol >= len(record) {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrCorpus, line, len(record))
		}

		sample := Sample{
			Text:  strings.TrimSpace(record[textCol]),
			Label: strings.TrimSpace(record[labelCol]),
		}
		if sample.Text == "" || sample.Label == "" {
			continue
		}
		samples = append(samples, sample)
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrCorpus)
	}
	return samples, nil
}

// Texts returns the text column.
func Texts(samples []Sample) []string {
	return lo.Map(samples, func(s Sample, _ int) string { return s.Text })
}

// Labels returns the label column.
func Labels(samples []Sample) []string {
	return lo.Map(samples, func(s Sample, _ int) string { return s.Label })
}
