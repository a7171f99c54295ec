package models

import "time"

// Severity grades a prediction by classifier confidence.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityFor derives the severity label from classifier confidence.
// Above 0.85 is high, above 0.6 is medium, everything else is low; the
// boundaries themselves fall into the lower band.
func SeverityFor(confidence float64) Severity {
	switch {
	case confidence > 0.85:
		return SeverityHigh
	case confidence > 0.6:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DataSource records whether a response section carries upstream data or
// built-in fallback content.
type DataSource string

const (
	SourceLive     DataSource = "live"
	SourceFallback DataSource = "fallback"
)

// PredictionResult is the outcome of classifying one plant image.
// Severity is always derived from Confidence, never taken from upstream.
type PredictionResult struct {
	Disease    string   `json:"disease"`
	Confidence float64  `json:"confidence"`
	Organ      string   `json:"organ"`
	Severity   Severity `json:"severity"`
}

// TreatmentAdvice is a flat fact sheet for treating one disease. Absent
// fields marshal as null.
type TreatmentAdvice struct {
	Symptoms   *string `json:"symptoms"`
	Organic    *string `json:"organic"`
	Chemical   *string `json:"chemical"`
	Prevention *string `json:"prevention"`
}

// Product is a shoppable item matched to a disease.
type Product struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
	URL   *string  `json:"url"`
	Image *string  `json:"image"`
}

// Tutorial is a video tutorial matched to a disease.
type Tutorial struct {
	Title     string  `json:"title"`
	VideoID   *string `json:"videoId"`
	Thumbnail *string `json:"thumbnail"`
	URL       *string `json:"url"`
}

// SourceReport tells the caller which sections of a bundle came from the
// upstream service and which fell back to built-in content.
type SourceReport struct {
	Prediction DataSource `json:"prediction"`
	Treatments DataSource `json:"treatments"`
	Products   DataSource `json:"products"`
	Tutorials  DataSource `json:"tutorials"`
}

// AnalysisBundle is the full response to an analyze request. The slices
// are always non-nil so they marshal as [] rather than null.
type AnalysisBundle struct {
	Result     PredictionResult  `json:"result"`
	Treatments []TreatmentAdvice `json:"treatments"`
	Products   []Product         `json:"products"`
	Tutorials  []Tutorial        `json:"tutorials"`
	Sources    SourceReport      `json:"sources"`
}

// AnalysisRecord is the stored form of one analysis. The record ID names
// the document rather than living in its body; created_at drives the
// recency sort.
type AnalysisRecord struct {
	ID         string    `firestore:"-"`
	Disease    string    `firestore:"disease"`
	Confidence float64   `firestore:"confidence"`
	Organ      string    `firestore:"organ"`
	Severity   Severity  `firestore:"severity"`
	CreatedAt  time.Time `firestore:"created_at"`
}

// RecentAnalysis is the summary projection served by the recent listing.
type RecentAnalysis struct {
	Disease    string   `json:"disease"`
	Confidence float64  `json:"confidence"`
	Severity   Severity `json:"severity"`
}

// HealthReport is the diagnostic record served by the test endpoint.
type HealthReport struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}
