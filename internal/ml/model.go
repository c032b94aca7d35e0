// Package ml fits and applies the PM2.5 regression model: an ordinary
// least-squares linear model with intercept over the four fused feature
// fields (aod, temperature, humidity, wind_speed).
package ml

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/air-guardian/pm25-fusion-poc/internal/properties"
)

// FeatureNames records the column order the model was fitted on.
var FeatureNames = []string{"aod", "temperature", "humidity", "wind_speed"}

// Model is the persisted regressor. Consumers treat it as opaque: load,
// predict, nothing else.
type Model struct {
	Intercept    float64
	Coefficients []float64
	Features     []string
	TrainedAt    time.Time
}

// Predict returns the estimated PM2.5 for one feature vector, in the
// FeatureNames order.
func (m *Model) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, fmt.Errorf("model expects %d features, got %d", len(m.Coefficients), len(features))
	}
	v := m.Intercept
	for i, f := range features {
		v += m.Coefficients[i] * f
	}
	return v, nil
}

// Save gob-encodes the model atomically.
func Save(m *Model, path string) error {
	if err := properties.EnsureParentDir(path); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// Load reads a model artifact written by Save.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	var m Model
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	return &m, nil
}
