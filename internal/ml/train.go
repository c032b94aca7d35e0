package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/air-guardian/pm25-fusion-poc/internal/fusion"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultSeed keeps the train/test split reproducible across runs.
const DefaultSeed = 42

// ErrInsufficientData is returned when fewer than 2 complete rows are
// available, or a split partition would be empty.
var ErrInsufficientData = errors.New("not enough complete records to train")

// ValidationRow is one held-out (actual, predicted) pair of the
// validation report artifact.
type ValidationRow struct {
	Actual    float64 `csv:"actual_pm"`
	Predicted float64 `csv:"predicted_pm"`
}

// TrainResult bundles the fitted model with its held-out evaluation.
type TrainResult struct {
	Model     *Model
	MAE       float64
	TrainRows int
	TestRows  int
	Report    []ValidationRow
}

func featureVector(r fusion.Record) []float64 {
	return []float64{*r.AOD, *r.Temperature, *r.Humidity, *r.WindSpeed}
}

// Train fits the regressor on an 80/20 split of the complete records.
// The split is deterministic for a given seed.
func Train(records []fusion.Record, seed int64, logger zerolog.Logger) (*TrainResult, error) {
	logger = logger.With().Str("component", "ml").Logger()

	complete := make([]fusion.Record, 0, len(records))
	for _, r := range records {
		if r.Complete() {
			complete = append(complete, r)
		}
	}
	n := len(complete)
	if n < 2 {
		return nil, fmt.Errorf("%w: have %d rows, need at least 2", ErrInsufficientData, n)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	testN := n / 5
	if testN == 0 {
		testN = 1
	}
	trainN := n - testN
	if trainN == 0 {
		return nil, fmt.Errorf("%w: split left no training rows", ErrInsufficientData)
	}

	testIdx := perm[:testN]
	trainIdx := perm[testN:]

	x := mat.NewDense(trainN, len(FeatureNames)+1, nil)
	y := mat.NewVecDense(trainN, nil)
	for row, idx := range trainIdx {
		r := complete[idx]
		x.Set(row, 0, 1)
		for col, f := range featureVector(r) {
			x.Set(row, col+1, f)
		}
		y.SetVec(row, r.PM25)
	}

	var beta mat.VecDense
	if err := beta.SolveVec(x, y); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("least-squares fit failed: %w", err)
		}
		logger.Warn().Float64("condition", float64(cond)).Msg("feature matrix is ill-conditioned")
	}

	model := &Model{
		Intercept:    beta.AtVec(0),
		Coefficients: make([]float64, len(FeatureNames)),
		Features:     append([]string(nil), FeatureNames...),
		TrainedAt:    time.Now().UTC(),
	}
	for i := range model.Coefficients {
		model.Coefficients[i] = beta.AtVec(i + 1)
	}

	report := make([]ValidationRow, 0, testN)
	absErrs := make([]float64, 0, testN)
	for _, idx := range testIdx {
		r := complete[idx]
		pred, err := model.Predict(featureVector(r))
		if err != nil {
			return nil, err
		}
		report = append(report, ValidationRow{Actual: r.PM25, Predicted: pred})
		absErrs = append(absErrs, math.Abs(r.PM25-pred))
	}
	mae := stat.Mean(absErrs, nil)

	logger.Info().
		Int("train_rows", trainN).
		Int("test_rows", testN).
		Float64("mae", mae).
		Msg("model trained")

	return &TrainResult{
		Model:     model,
		MAE:       mae,
		TrainRows: trainN,
		TestRows:  testN,
		Report:    report,
	}, nil
}

// PredictRecords applies the model to every complete record, returning
// predictions index-aligned with the filtered rows it also returns.
func PredictRecords(m *Model, records []fusion.Record) ([]fusion.Record, []float64, error) {
	complete := make([]fusion.Record, 0, len(records))
	preds := make([]float64, 0, len(records))
	for _, r := range records {
		if !r.Complete() {
			continue
		}
		pred, err := m.Predict(featureVector(r))
		if err != nil {
			return nil, nil, err
		}
		complete = append(complete, r)
		preds = append(preds, pred)
	}
	return complete, preds, nil
}
