package services

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plantguardian/plantguard-backend/internal/fallback"
	"github.com/plantguardian/plantguard-backend/internal/models"
)

const persistTimeout = 5 * time.Second

// AnalysisService wraps the external classifier with fallback content so
// every caller gets a usable answer even when the upstream API is down.
type AnalysisService struct {
	api    *PlantAPIService
	store  AnalysisStore
	logger *log.Logger
}

func NewAnalysisService(api *PlantAPIService, store AnalysisStore, logger *log.Logger) *AnalysisService {
	return &AnalysisService{
		api:    api,
		store:  store,
		logger: logger,
	}
}

// Predict classifies an image, substituting the fallback prediction when the
// classifier fails. Severity is derived from whichever confidence survives.
func (as *AnalysisService) Predict(ctx context.Context, image string) (models.PredictionResult, models.DataSource) {
	source := models.SourceLive
	pred, err := as.api.Predict(ctx, image)
	if err != nil {
		as.logger.Printf("Classifier unavailable, serving fallback prediction: %v", err)
		pred = &ClassifierPrediction{
			Disease:    fallback.PredictionDisease,
			Confidence: fallback.PredictionConfidence,
		}
		source = models.SourceFallback
	}

	return models.PredictionResult{
		Disease:    pred.Disease,
		Confidence: pred.Confidence,
		Organ:      "leaf",
		Severity:   models.SeverityFor(pred.Confidence),
	}, source
}

func (as *AnalysisService) Treatments(ctx context.Context, disease string) ([]models.TreatmentAdvice, models.DataSource) {
	treatments, err := as.api.Treatments(ctx, disease)
	if err != nil {
		as.logger.Printf("Treatment lookup failed for %q, serving fallback: %v", disease, err)
		return fallback.Treatments(), models.SourceFallback
	}
	return treatments, models.SourceLive
}

func (as *AnalysisService) Products(ctx context.Context, disease string) ([]models.Product, models.DataSource) {
	products, err := as.api.Products(ctx, disease)
	if err != nil {
		as.logger.Printf("Product lookup failed for %q, serving fallback: %v", disease, err)
		return fallback.Products(), models.SourceFallback
	}
	return products, models.SourceLive
}

func (as *AnalysisService) Tutorials(ctx context.Context, disease string) ([]models.Tutorial, models.DataSource) {
	tutorials, err := as.api.Tutorials(ctx, disease)
	if err != nil {
		as.logger.Printf("Tutorial lookup failed for %q, serving fallback: %v", disease, err)
		return fallback.Tutorials(disease), models.SourceFallback
	}
	return tutorials, models.SourceLive
}

// Analyze classifies the image, then fetches treatments, products and
// tutorials for the detected disease concurrently. Persistence happens in
// the background and never delays the response.
func (as *AnalysisService) Analyze(ctx context.Context, image string) models.AnalysisBundle {
	result, predictionSource := as.Predict(ctx, image)

	var (
		treatments      []models.TreatmentAdvice
		products        []models.Product
		tutorials       []models.Tutorial
		treatmentSource models.DataSource
		productSource   models.DataSource
		tutorialSource  models.DataSource
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		treatments, treatmentSource = as.Treatments(ctx, result.Disease)
	}()
	go func() {
		defer wg.Done()
		products, productSource = as.Products(ctx, result.Disease)
	}()
	go func() {
		defer wg.Done()
		tutorials, tutorialSource = as.Tutorials(ctx, result.Disease)
	}()
	wg.Wait()

	bundle := models.AnalysisBundle{
		Result:     result,
		Treatments: treatments,
		Products:   products,
		Tutorials:  tutorials,
		Sources: models.SourceReport{
			Prediction: predictionSource,
			Treatments: treatmentSource,
			Products:   productSource,
			Tutorials:  tutorialSource,
		},
	}

	go as.persistAnalysis(result, image)

	return bundle
}

// persistAnalysis stores the finished analysis on its own deadline so a slow
// database never delays the client response.
func (as *AnalysisService) persistAnalysis(result models.PredictionResult, image string) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	rec := models.AnalysisRecord{
		ID:         uuid.New().String(),
		Disease:    result.Disease,
		Confidence: result.Confidence,
		Organ:      result.Organ,
		Severity:   result.Severity,
		CreatedAt:  time.Now().UTC(),
	}

	if err := as.store.InsertAnalysis(ctx, rec); err != nil {
		if !errors.Is(err, ErrNoStore) {
			as.logger.Printf("Failed to store analysis %s: %v", rec.ID, err)
		}
		return
	}

	if err := as.store.ArchiveImage(ctx, rec.ID, image); err != nil && !errors.Is(err, ErrNoStore) {
		as.logger.Printf("Failed to archive image for analysis %s: %v", rec.ID, err)
	}
}

// Recent returns the latest stored analyses, or the fixed sample set when no
// store is configured or the query fails.
func (as *AnalysisService) Recent(ctx context.Context, limit int) []models.RecentAnalysis {
	records, err := as.store.RecentAnalyses(ctx, limit)
	if err != nil {
		if !errors.Is(err, ErrNoStore) {
			as.logger.Printf("Recent analyses query failed, serving fallback: %v", err)
		}
		return fallback.RecentAnalyses()
	}

	recent := make([]models.RecentAnalysis, 0, len(records))
	for _, rec := range records {
		recent = append(recent, models.RecentAnalysis{
			Disease:    rec.Disease,
			Confidence: rec.Confidence,
			Severity:   rec.Severity,
		})
	}
	return recent
}

// Health reports backend and database status in the human-readable form the
// dashboard expects.
func (as *AnalysisService) Health(ctx context.Context, dbURLSet, dbNameSet bool) models.HealthReport {
	report := models.HealthReport{
		Backend:          "✅ Running",
		Database:         "⚠️  Available but not initialized",
		DatabaseURL:      setFlag(dbURLSet),
		DatabaseName:     setFlag(dbNameSet),
		ConnectionStatus: "Not Connected",
		Collections:      []string{},
	}

	if !as.store.Available() {
		return report
	}

	report.Database = "✅ Available"
	report.ConnectionStatus = "Connected"

	names, err := as.store.Collections(ctx)
	if err != nil {
		report.Database = "⚠️  Connected but Error: " + truncate(err.Error(), 50)
		return report
	}

	if len(names) > 10 {
		names = names[:10]
	}
	report.Collections = names
	report.Database = "✅ Connected & Working"
	return report
}

func setFlag(set bool) string {
	if set {
		return "✅ Set"
	}
	return "❌ Not Set"
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
