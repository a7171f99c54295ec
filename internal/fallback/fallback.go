// Package fallback is the single home for the fixed content substituted
// whenever a live upstream or storage call cannot produce a usable result.
package fallback

import (
	"fmt"

	"github.com/plantguardian/plantguard-backend/internal/models"
)

// PredictionDisease and PredictionConfidence are substituted when the
// classifier is unreachable or returns an unusable payload.
const (
	PredictionDisease    = "Leaf Blight"
	PredictionConfidence = 0.87
)

// Treatments returns the generic leaf-spot advice served when the
// treatments lookup fails. Each call returns a fresh slice.
func Treatments() []models.TreatmentAdvice {
	return []models.TreatmentAdvice{
		{
			Symptoms:   strPtr("Spots and lesions on leaves"),
			Organic:    strPtr("Neem oil spray weekly"),
			Chemical:   strPtr("Copper-based fungicide as directed"),
			Prevention: strPtr("Ensure proper spacing and airflow"),
		},
	}
}

// Products returns the two stand-in products served when the products
// lookup fails.
func Products() []models.Product {
	return []models.Product{
		{
			Name:  "Bio Neem Oil",
			Price: floatPtr(12.99),
			URL:   strPtr("https://example.com/neem"),
			Image: strPtr("https://images.unsplash.com/photo-1524594081293-190a2fe0baae?q=80&w=400"),
		},
		{
			Name:  "Copper Fungicide",
			Price: floatPtr(18.49),
			URL:   strPtr("https://example.com/copper"),
			Image: strPtr("https://images.unsplash.com/photo-1542291026-7eec264c27ff?q=80&w=400"),
		},
	}
}

// Tutorials returns two stand-in tutorials titled for the given disease,
// served when the tutorials lookup fails. Both point at fixed demo videos.
func Tutorials(disease string) []models.Tutorial {
	return []models.Tutorial{
		{
			Title:     fmt.Sprintf("How to treat %s", disease),
			VideoID:   strPtr("dQw4w9WgXcQ"),
			Thumbnail: strPtr("https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg"),
			URL:       strPtr("https://www.youtube.com/watch?v=dQw4w9WgXcQ"),
		},
		{
			Title:     fmt.Sprintf("Preventing %s in your garden", disease),
			VideoID:   strPtr("9bZkp7q19f0"),
			Thumbnail: strPtr("https://img.youtube.com/vi/9bZkp7q19f0/hqdefault.jpg"),
			URL:       strPtr("https://www.youtube.com/watch?v=9bZkp7q19f0"),
		},
	}
}

// RecentAnalyses returns the fixed history shown when no analysis store
// is reachable.
func RecentAnalyses() []models.RecentAnalysis {
	return []models.RecentAnalysis{
		{Disease: "Leaf Blight", Confidence: 0.87, Severity: models.SeverityHigh},
		{Disease: "Powdery Mildew", Confidence: 0.76, Severity: models.SeverityMedium},
		{Disease: "Rust", Confidence: 0.63, Severity: models.SeverityMedium},
		{Disease: "Healthy", Confidence: 0.94, Severity: models.SeverityLow},
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
