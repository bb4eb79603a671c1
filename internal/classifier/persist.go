package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/gzip"

	"smartdiagnosis/internal/artifact"
)

const (
	DefaultModelFile      = "disease_predictor_model.json.gz"
	DefaultVectorizerFile = "tfidf_vectorizer.json.gz"

	artifactFormat = 1
)

// ArtifactNames are the names of the two halves of a persisted pair.
type ArtifactNames struct {
	Model      string
	Vectorizer string
}

// DefaultArtifactNames returns the stock file names.
func DefaultArtifactNames() ArtifactNames {
	return ArtifactNames{Model: DefaultModelFile, Vectorizer: DefaultVectorizerFile}
}

// Pair is a fitted vectorizer together with the model trained on its output.
// The two are only valid together.
type Pair struct {
	Vectorizer *TFIDFVectorizer
	Model      *Model
}

type vectorizerArtifact struct {
	Format      int              `json:"format"`
	PairID      string           `json:"pair_id"`
	NumFeatures int              `json:"num_features"`
	Vectorizer  *TFIDFVectorizer `json:"vectorizer"`
}

type modelArtifact struct {
	Format int    `json:"format"`
	Model  *Model `json:"model"`
}

// Save writes both halves of the pair, vectorizer first.
func Save(ctx context.Context, store artifact.Store, names ArtifactNames, pair *Pair) error {
	vecData, err := encodeArtifact(vectorizerArtifact{
		Format:      artifactFormat,
		PairID:      pair.Model.PairID,
		NumFeatures: pair.Vectorizer.NumFeatures(),
		Vectorizer:  pair.Vectorizer,
	})
	if err != nil {
		return fmt.Errorf("failed to encode vectorizer: %w", err)
	}
	modelData, err := encodeArtifact(modelArtifact{Format: artifactFormat, Model: pair.Model})
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	if err := store.Write(ctx, names.Vectorizer, vecData); err != nil {
		return fmt.Errorf("failed to save vectorizer: %w", err)
	}
	if err := store.Write(ctx, names.Model, modelData); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}
	return nil
}

// Load reads and cross-checks both halves. Every failure wraps ErrModelLoad.
func Load(ctx context.Context, store artifact.Store, names ArtifactNames) (*Pair, error) {
	var va vectorizerArtifact
	if err := readArtifact(ctx, store, names.Vectorizer, &va); err != nil {
		return nil, err
	}
	var ma modelArtifact
	if err := readArtifact(ctx, store, names.Model, &ma); err != nil {
		return nil, err
	}

	if va.Format != artifactFormat || ma.Format != artifactFormat {
		return nil, fmt.Errorf("%w: unsupported artifact format (vectorizer %d, model %d)", ErrModelLoad, va.Format, ma.Format)
	}
	if va.Vectorizer == nil || ma.Model == nil {
		return nil, fmt.Errorf("%w: artifact body is empty", ErrModelLoad)
	}
	if va.PairID == "" || va.PairID != ma.Model.PairID {
		return nil, fmt.Errorf("%w: vectorizer pair %q does not match model pair %q", ErrModelLoad, va.PairID, ma.Model.PairID)
	}
	if err := va.Vectorizer.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	if va.NumFeatures != va.Vectorizer.NumFeatures() || va.NumFeatures != ma.Model.NumFeatures {
		return nil, fmt.Errorf("%w: feature count mismatch (vectorizer %d, model %d)", ErrModelLoad, va.NumFeatures, ma.Model.NumFeatures)
	}
	if err := ma.Model.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrModelLoad, err)
	}

	return &Pair{Vectorizer: va.Vectorizer, Model: ma.Model}, nil
}

func readArtifact(ctx context.Context, store artifact.Store, name string, v any) error {
	data, err := store.Read(ctx, name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrModelLoad, err)
	}
	if err := decodeArtifact(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrModelLoad, store.Location(name), err)
	}
	return nil
}

func encodeArtifact(v any) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(v); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeArtifact(data []byte, v any) error {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("not a gzip stream: %w", err)
	}
	defer zr.Close()

	if err := json.NewDecoder(zr).Decode(v); err != nil {
		return fmt.Errorf("invalid artifact json: %w", err)
	}
	return nil
}
