// Package pipeline orchestrates a full prediction run for one symbol:
// fetch → inspect → clean → feature engineering → training → prediction →
// analysis → monitoring → report combining. The run fails fast: the first
// stage error fails the fetch in the ledger, raises exactly one alert, and
// moves the run to the failed state.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"stock-prediction-lab/internal/artifact"
	"stock-prediction-lab/internal/dataset"
	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/idgen"
	"stock-prediction-lab/internal/ledger"
	"stock-prediction-lab/internal/marketdata"
	"stock-prediction-lab/internal/monitor"
	"stock-prediction-lab/internal/observability"
	"stock-prediction-lab/internal/process"
	"stock-prediction-lab/internal/registry"
	"stock-prediction-lab/internal/report"
	"stock-prediction-lab/internal/storage"
	"stock-prediction-lab/internal/train"
)

// StageError wraps a stage failure with the stage it happened in.
type StageError struct {
	Stage State
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Options for creating a Runner.
type Options struct {
	// Required collaborators
	Ledger   *ledger.Ledger
	Registry *registry.Registry
	Monitor  *monitor.Monitor
	Alerts   storage.AlertStore
	Market   marketdata.Client
	Trainer  train.Trainer
	Artifact *artifact.Store

	// PrimaryVariant is the variant the monitor evaluates. Empty means
	// without_outliers.
	PrimaryVariant domain.Variant

	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// Runner executes pipeline runs.
type Runner struct {
	ledger   *ledger.Ledger
	registry *registry.Registry
	monitor  *monitor.Monitor
	alerts   storage.AlertStore
	market   marketdata.Client
	trainer  train.Trainer
	store    *artifact.Store
	primary  domain.Variant

	log     zerolog.Logger
	metrics *observability.Metrics

	now func() time.Time
}

// New creates a Runner.
func New(opts Options) *Runner {
	primary := opts.PrimaryVariant
	if primary == "" {
		primary = domain.VariantWithoutOutliers
	}
	trainer := opts.Trainer
	if trainer == nil {
		trainer = &train.LinearTrainer{}
	}
	return &Runner{
		ledger:   opts.Ledger,
		registry: opts.Registry,
		monitor:  opts.Monitor,
		alerts:   opts.Alerts,
		market:   opts.Market,
		trainer:  trainer,
		store:    opts.Artifact,
		primary:  primary,
		log:      opts.Logger.With().Str("component", "pipeline").Logger(),
		metrics:  opts.Metrics,
		now:      time.Now,
	}
}

// RunResult summarizes a finished run.
type RunResult struct {
	FetchID      string
	Symbol       string
	FinalState   State
	ModelIDs     []string
	Degraded     bool
	ForecastPath string
	ReportPath   string
}

// variantArtifacts accumulates per-variant intermediate state across stages.
type variantArtifacts struct {
	variant domain.Variant
	clean   process.CleanReport
	frame   *dataset.Frame
	model   *domain.ModelRecord
	result  *train.Result
}

// Run executes the whole pipeline for one symbol.
func (r *Runner) Run(ctx context.Context, symbol string) (*RunResult, error) {
	machine := NewMachine()
	result := &RunResult{Symbol: symbol}

	stageStart := r.now()
	enter := func(next State) error {
		if prev := machine.Current(); prev != StateInit && r.metrics != nil {
			r.metrics.StageDuration.WithLabelValues(string(prev)).
				Observe(r.now().Sub(stageStart).Seconds())
		}
		if err := machine.To(next); err != nil {
			return err
		}
		stageStart = r.now()
		r.log.Debug().Str("stage", string(next)).Msg("stage started")
		return nil
	}

	// Fetching
	if err := enter(StateFetching); err != nil {
		return result, err
	}
	fetch, err := r.ledger.BeginFetch(ctx, symbol)
	if err != nil {
		return r.fail(ctx, machine, result, fmt.Errorf("begin fetch: %w", err))
	}
	result.FetchID = fetch.FetchID
	result.Symbol = fetch.Symbol // canonical form from the ledger
	r.log.Info().Str("fetch_id", fetch.FetchID).Str("symbol", fetch.Symbol).Msg("run started")

	bars, err := r.stageFetch(ctx, fetch)
	if err != nil {
		return r.fail(ctx, machine, result, err)
	}

	// Inspecting
	if err := enter(StateInspecting); err != nil {
		return r.fail(ctx, machine, result, err)
	}
	inspectionBody, err := r.stageInspect(fetch, bars)
	if err != nil {
		return r.fail(ctx, machine, result, err)
	}

	// Cleaning
	if err := enter(StateCleaning); err != nil {
		return r.fail(ctx, machine, result, err)
	}
	variants, err := r.stageClean(fetch, bars)
	if err != nil {
		return r.fail(ctx, machine, result, err)
	}

	// Feature engineering
	if err := enter(StateFeatureEngineering); err != nil {
		return r.fail(ctx, machine, result, err)
	}
	if err := r.stageFeatures(fetch, variants); err != nil {
		return r.fail(ctx, machine, result, err)
	}

	// Training
	if err := enter(StateTraining); err != nil {
		return r.fail(ctx, machine, result, err)
	}
	if err := r.stageTrain(ctx, fetch, variants); err != nil {
		return r.fail(ctx, machine, result, err)
	}
	for _, v := range variants {
		result.ModelIDs = append(result.ModelIDs, v.model.ModelID)
	}

	// Predicting
	if err := enter(StatePredicting); err != nil {
		return r.fail(ctx, machine, result, err)
	}
	forecastPath, err := r.stagePredict(ctx, fetch, variants)
	if err != nil {
		return r.fail(ctx, machine, result, err)
	}
	result.ForecastPath = forecastPath

	// Analyzing
	if err := enter(StateAnalyzing); err != nil {
		return r.fail(ctx, machine, result, err)
	}
	analysisBodies, err := r.stageAnalyze(variants)
	if err != nil {
		return r.fail(ctx, machine, result, err)
	}

	// Monitoring
	if err := enter(StateMonitoring); err != nil {
		return r.fail(ctx, machine, result, err)
	}
	summary, err := r.stageMonitor(ctx, variants)
	if err != nil {
		return r.fail(ctx, machine, result, err)
	}
	result.Degraded = summary.Degraded

	// Report combining
	if err := enter(StateReportCombining); err != nil {
		return r.fail(ctx, machine, result, err)
	}
	reportPath, err := r.stageCombine(fetch, inspectionBody, analysisBodies, summary)
	if err != nil {
		return r.fail(ctx, machine, result, err)
	}
	result.ReportPath = reportPath

	if err := machine.To(StateComplete); err != nil {
		return r.fail(ctx, machine, result, err)
	}
	result.FinalState = machine.Current()

	if r.metrics != nil {
		r.metrics.RunsTotal.WithLabelValues(string(StateComplete)).Inc()
		r.metrics.LastRunCompleted.SetToCurrentTime()
	}
	r.log.Info().
		Str("fetch_id", fetch.FetchID).
		Strs("models", result.ModelIDs).
		Bool("degraded", result.Degraded).
		Msg("run complete")

	return result, nil
}

// fail is the single failure path: it fails the pending fetch (if any),
// raises exactly one alert, and moves the machine to Failed.
func (r *Runner) fail(ctx context.Context, machine *Machine, result *RunResult, cause error) (*RunResult, error) {
	stage := machine.Current()
	stageErr := &StageError{Stage: stage, Err: cause}

	r.log.Error().Err(cause).Str("stage", string(stage)).Str("fetch_id", result.FetchID).Msg("stage failed")

	if result.FetchID != "" {
		if _, err := r.ledger.FailFetch(ctx, result.FetchID, stageErr.Error()); err != nil &&
			!errors.Is(err, ledger.ErrUnknownFetch) {
			r.log.Error().Err(err).Msg("failed to record fetch failure")
		}
	}

	alert := &domain.AlertEvent{
		AlertID:  uuid.NewString(),
		Kind:     domain.AlertStageFailure,
		FetchID:  result.FetchID,
		Symbol:   result.Symbol,
		Stage:    string(stage),
		Message:  stageErr.Error(),
		RaisedAt: r.now().UTC().UnixMilli(),
	}
	if err := r.alerts.Append(ctx, alert); err != nil {
		r.log.Error().Err(err).Msg("failed to append failure alert")
	}

	if err := machine.To(StateFailed); err != nil {
		r.log.Error().Err(err).Msg("failed to enter failed state")
	}
	result.FinalState = machine.Current()

	if r.metrics != nil {
		r.metrics.RunsTotal.WithLabelValues(string(StateFailed)).Inc()
		r.metrics.StageFailures.WithLabelValues(string(stage)).Inc()
	}
	return result, stageErr
}

func (r *Runner) stageFetch(ctx context.Context, fetch *domain.FetchRecord) ([]dataset.Bar, error) {
	bars, err := r.market.FetchDaily(ctx, fetch.Symbol)
	if err != nil {
		if r.metrics != nil {
			r.metrics.FetchesTotal.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}

	rawPath := r.store.Layout().RawData(fetch.Symbol, fetch.FetchID)
	if err := dataset.SaveBars(rawPath, bars); err != nil {
		return nil, err
	}

	if _, err := r.ledger.CompleteFetch(ctx, fetch.FetchID, rawPath); err != nil {
		return nil, fmt.Errorf("complete fetch: %w", err)
	}

	if r.metrics != nil {
		r.metrics.FetchesTotal.WithLabelValues("ok").Inc()
		r.metrics.BarsFetched.Add(float64(len(bars)))
	}
	return bars, nil
}

func (r *Runner) stageInspect(fetch *domain.FetchRecord, bars []dataset.Bar) (string, error) {
	summary, err := process.Inspect(bars)
	if err != nil {
		return "", err
	}

	body := report.RenderInspection(&report.Inspection{
		Symbol:  fetch.Symbol,
		FetchID: fetch.FetchID,
		Summary: summary,
	})
	path := r.store.Layout().InspectionReport(fetch.Symbol, fetch.FetchID)
	if err := r.store.Write(path, []byte(body)); err != nil {
		return "", err
	}
	return body, nil
}

func (r *Runner) stageClean(fetch *domain.FetchRecord, bars []dataset.Bar) ([]*variantArtifacts, error) {
	variants := make([]*variantArtifacts, 0, len(domain.Variants))
	for _, variant := range domain.Variants {
		removeOutliers := variant == domain.VariantWithoutOutliers
		cleaned, cleanReport, err := process.Clean(bars, removeOutliers)
		if err != nil {
			return nil, fmt.Errorf("clean %s: %w", variant, err)
		}

		path := r.store.Layout().CleanedData(fetch.Symbol, fetch.FetchID, variant)
		if err := dataset.SaveBars(path, cleaned); err != nil {
			return nil, err
		}

		variants = append(variants, &variantArtifacts{
			variant: variant,
			clean:   cleanReport,
		})
		// Bars aren't retained on the struct; the feature stage reloads
		// from the cleaned artifact so a run is reproducible from disk.
	}
	return variants, nil
}

func (r *Runner) stageFeatures(fetch *domain.FetchRecord, variants []*variantArtifacts) error {
	for _, v := range variants {
		cleaned, err := dataset.LoadBars(r.store.Layout().CleanedData(fetch.Symbol, fetch.FetchID, v.variant))
		if err != nil {
			return err
		}

		frame, err := process.BuildFeatures(cleaned)
		if err != nil {
			return fmt.Errorf("features %s: %w", v.variant, err)
		}

		path := r.store.Layout().FeatureData(fetch.Symbol, fetch.FetchID, v.variant)
		if err := dataset.SaveFrame(path, frame); err != nil {
			return err
		}
		v.frame = frame
	}
	return nil
}

func (r *Runner) stageTrain(ctx context.Context, fetch *domain.FetchRecord, variants []*variantArtifacts) error {
	for _, v := range variants {
		trained, err := r.trainer.Train(v.frame)
		if err != nil {
			return fmt.Errorf("train %s: %w", v.variant, err)
		}

		trainedAt := r.now().UTC()
		modelID := idgen.NewModelID(fetch.Symbol, trainedAt, v.variant)
		artifactPath := r.store.Layout().Model(modelID)
		if err := train.Save(artifactPath, trained.Model); err != nil {
			return err
		}

		record := &domain.ModelRecord{
			ModelID:      modelID,
			FetchID:      fetch.FetchID,
			Symbol:       fetch.Symbol,
			Variant:      v.variant,
			TrainedAt:    trainedAt.UnixMilli(),
			ArtifactPath: artifactPath,
			Metrics:      trained.Metrics,
			Features:     trained.Model.Features,
			Target:       trained.Model.Target,
			ModelType:    trained.Model.ModelType,
		}
		if err := r.registry.Register(ctx, record); err != nil {
			return fmt.Errorf("register %s: %w", modelID, err)
		}

		v.model = record
		v.result = trained

		if r.metrics != nil {
			r.metrics.ModelsRegistered.WithLabelValues(string(v.variant)).Inc()
			r.metrics.LastHoldoutR2.WithLabelValues(fetch.Symbol, string(v.variant)).Set(trained.Metrics.R2)
		}
		r.log.Info().
			Str("model_id", modelID).
			Float64("rmse", trained.Metrics.RMSE).
			Float64("r2", trained.Metrics.R2).
			Msg("model registered")
	}
	return nil
}

// stagePredict writes per-model actual-vs-predicted series and the fetch's
// next-trading-day forecast. The forecast deliberately goes through the
// registry and the persisted artifact rather than the in-memory model, so a
// registration or serialization bug surfaces here instead of at the next
// standalone prediction.
func (r *Runner) stagePredict(ctx context.Context, fetch *domain.FetchRecord, variants []*variantArtifacts) (string, error) {
	forecasts := make([]*train.Forecast, 0, len(variants))
	for _, v := range variants {
		predicted, err := train.PredictFrame(v.result.Model, v.frame)
		if err != nil {
			return "", fmt.Errorf("predict %s: %w", v.variant, err)
		}

		actual, err := v.frame.Column(v.result.Model.Target)
		if err != nil {
			return "", err
		}

		out := &dataset.Frame{
			Columns: []string{"actual", "predicted"},
			Dates:   v.frame.Dates,
		}
		for i := range predicted {
			out.Rows = append(out.Rows, []float64{actual[i], predicted[i]})
		}

		if err := dataset.SaveFrame(r.store.Layout().Predictions(v.model.ModelID), out); err != nil {
			return "", err
		}

		record, err := r.registry.LatestModel(ctx, fetch.Symbol, v.variant)
		if err != nil {
			return "", fmt.Errorf("lookup model for %s: %w", v.variant, err)
		}
		loaded, err := train.Load(record.ArtifactPath)
		if err != nil {
			return "", fmt.Errorf("load model %s: %w", record.ModelID, err)
		}

		forecast, err := train.ForecastNextClose(loaded, v.frame)
		if err != nil {
			return "", fmt.Errorf("forecast %s: %w", v.variant, err)
		}
		forecast.Variant = record.Variant
		forecast.FetchID = record.FetchID
		forecast.ModelID = record.ModelID
		forecasts = append(forecasts, forecast)

		r.log.Info().
			Str("model_id", record.ModelID).
			Str("future_date", forecast.FutureDate).
			Float64("predicted_close", forecast.PredictedClose).
			Msg("next-day forecast")
	}

	path := r.store.Layout().Forecast(fetch.Symbol, fetch.FetchID)
	if err := train.SaveForecasts(path, forecasts); err != nil {
		return "", err
	}
	return path, nil
}

func (r *Runner) stageAnalyze(variants []*variantArtifacts) ([]report.Section, error) {
	sections := make([]report.Section, 0, len(variants))
	for _, v := range variants {
		body := report.RenderModelAnalysis(&report.ModelAnalysis{
			Model:     v.model,
			Clean:     v.clean,
			TrainRows: v.result.TrainRows,
			TestRows:  v.result.TestRows,
		})
		path := r.store.Layout().AnalysisReport(v.model.ModelID)
		if err := r.store.Write(path, []byte(body)); err != nil {
			return nil, err
		}
		sections = append(sections, report.Section{
			Title: fmt.Sprintf("Model Analysis (%s)", v.variant),
			Body:  body,
		})
	}
	return sections, nil
}

func (r *Runner) stageMonitor(ctx context.Context, variants []*variantArtifacts) (*domain.PerformanceSummary, error) {
	var primary *variantArtifacts
	for _, v := range variants {
		if v.variant == r.primary {
			primary = v
			break
		}
	}
	if primary == nil {
		return nil, fmt.Errorf("no trained model for primary variant %s", r.primary)
	}

	summary, err := r.monitor.Evaluate(ctx, primary.model)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", primary.model.ModelID, err)
	}

	if r.metrics != nil {
		outcome := "healthy"
		if summary.Degraded {
			outcome = "degraded"
		}
		r.metrics.EvaluationsTotal.WithLabelValues(outcome).Inc()
		if summary.Degraded {
			r.metrics.AlertsRaised.WithLabelValues(string(domain.AlertDegradation)).Inc()
		}
	}
	return summary, nil
}

func (r *Runner) stageCombine(fetch *domain.FetchRecord, inspectionBody string, analyses []report.Section, summary *domain.PerformanceSummary) (string, error) {
	sections := make([]report.Section, 0, len(analyses)+2)
	sections = append(sections, report.Section{Title: "Data Inspection", Body: inspectionBody})
	sections = append(sections, analyses...)
	sections = append(sections, report.Section{Title: "Performance Monitoring", Body: report.RenderMonitoring(summary)})

	body := report.RenderFinal(&report.Final{
		Symbol:      fetch.Symbol,
		FetchID:     fetch.FetchID,
		GeneratedAt: r.now().UTC().Format(time.RFC3339),
		Sections:    sections,
	})

	path := r.store.Layout().FinalReport(fetch.Symbol, fetch.FetchID)
	if err := r.store.Write(path, []byte(body)); err != nil {
		return "", err
	}
	return path, nil
}
