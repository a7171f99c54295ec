package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/plantguardian/plantguard-backend/internal/errors"
	"github.com/plantguardian/plantguard-backend/internal/models"
)

const defaultPlantAPIBase = "https://my-plant-ai.com"

// Per-call timeouts for the upstream plant API.
const (
	predictTimeout = 20 * time.Second
	contentTimeout = 15 * time.Second
)

// PlantAPIService talks to the external plant disease API. It reports
// failures as typed errors and leaves fallback substitution to callers.
type PlantAPIService struct {
	baseURL       string
	predictClient *http.Client
	contentClient *http.Client
}

// ClassifierPrediction is the usable part of an upstream predict response.
type ClassifierPrediction struct {
	Disease    string
	Confidence float64
}

func NewPlantAPIService(baseURL string) *PlantAPIService {
	if baseURL == "" {
		baseURL = defaultPlantAPIBase
	}
	return &PlantAPIService{
		baseURL:       strings.TrimRight(baseURL, "/"),
		predictClient: &http.Client{Timeout: predictTimeout},
		contentClient: &http.Client{Timeout: contentTimeout},
	}
}

// Predict submits a base64 image to the upstream classifier. An absent
// disease defaults to "Unknown" and an absent confidence to 0.5; a field
// that is present with an unusable type makes the whole payload malformed.
func (s *PlantAPIService) Predict(ctx context.Context, imageBase64 string) (*ClassifierPrediction, error) {
	body, err := json.Marshal(map[string]string{"image": imageBase64})
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/predict", bytes.NewBuffer(body))
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.predictClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalError("classifier", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewExternalError("classifier", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.NewExternalError("classifier", fmt.Errorf("status %d: %s", resp.StatusCode, raw))
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errors.NewMalformedError("classifier", err.Error())
	}

	pred := &ClassifierPrediction{Disease: "Unknown", Confidence: 0.5}
	if v, ok := payload["disease"]; ok {
		name, isString := v.(string)
		if !isString {
			return nil, errors.NewMalformedError("classifier", fmt.Sprintf("disease is %T, want string", v))
		}
		pred.Disease = name
	}
	if v, ok := payload["confidence"]; ok {
		conf, numeric := coerceFloat(v)
		if !numeric {
			return nil, errors.NewMalformedError("classifier", fmt.Sprintf("confidence %v is not numeric", v))
		}
		pred.Confidence = conf
	}
	return pred, nil
}

type treatmentPayload struct {
	Symptoms   *string `json:"symptoms"`
	Organic    *string `json:"organic"`
	Chemical   *string `json:"chemical"`
	Prevention *string `json:"prevention"`
	Preventive *string `json:"preventive"`
}

// Treatments fetches treatment advice for a disease. Upstream spells the
// prevention field either "prevention" or "preventive"; the first
// non-null of the two wins.
func (s *PlantAPIService) Treatments(ctx context.Context, disease string) ([]models.TreatmentAdvice, error) {
	raw, err := s.fetchContent(ctx, "treatments", disease)
	if err != nil {
		return nil, err
	}

	var items []treatmentPayload
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.NewMalformedError("treatments", err.Error())
	}

	out := make([]models.TreatmentAdvice, 0, len(items))
	for _, it := range items {
		prevention := it.Prevention
		if prevention == nil {
			prevention = it.Preventive
		}
		out = append(out, models.TreatmentAdvice{
			Symptoms:   it.Symptoms,
			Organic:    it.Organic,
			Chemical:   it.Chemical,
			Prevention: prevention,
		})
	}
	return out, nil
}

type productPayload struct {
	Name  *string `json:"name"`
	Price any     `json:"price"`
	URL   *string `json:"url"`
	Image *string `json:"image"`
}

// Products fetches shoppable products for a disease. A missing or
// non-numeric price becomes a null price rather than discarding the item.
func (s *PlantAPIService) Products(ctx context.Context, disease string) ([]models.Product, error) {
	raw, err := s.fetchContent(ctx, "products", disease)
	if err != nil {
		return nil, err
	}

	var items []productPayload
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.NewMalformedError("products", err.Error())
	}

	out := make([]models.Product, 0, len(items))
	for _, it := range items {
		name := "Product"
		if it.Name != nil {
			name = *it.Name
		}
		var price *float64
		if f, ok := coerceFloat(it.Price); ok {
			price = &f
		}
		out = append(out, models.Product{Name: name, Price: price, URL: it.URL, Image: it.Image})
	}
	return out, nil
}

type tutorialPayload struct {
	Title     *string `json:"title"`
	VideoID   *string `json:"videoId"`
	Thumbnail *string `json:"thumbnail"`
	URL       *string `json:"url"`
}

// Tutorials fetches video tutorials for a disease.
func (s *PlantAPIService) Tutorials(ctx context.Context, disease string) ([]models.Tutorial, error) {
	raw, err := s.fetchContent(ctx, "tutorials", disease)
	if err != nil {
		return nil, err
	}

	var items []tutorialPayload
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.NewMalformedError("tutorials", err.Error())
	}

	out := make([]models.Tutorial, 0, len(items))
	for _, it := range items {
		title := "Tutorial"
		if it.Title != nil {
			title = *it.Title
		}
		out = append(out, models.Tutorial{
			Title:     title,
			VideoID:   it.VideoID,
			Thumbnail: it.Thumbnail,
			URL:       it.URL,
		})
	}
	return out, nil
}

// fetchContent issues one disease-keyed lookup against the upstream
// content API and returns the raw response body.
func (s *PlantAPIService) fetchContent(ctx context.Context, resource, disease string) ([]byte, error) {
	query := url.Values{}
	query.Set("disease", disease)
	endpoint := fmt.Sprintf("%s/%s?%s", s.baseURL, resource, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	resp, err := s.contentClient.Do(req)
	if err != nil {
		return nil, errors.NewExternalError(resource, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewExternalError(resource, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, errors.NewExternalError(resource, fmt.Errorf("status %d: %s", resp.StatusCode, raw))
	}
	return raw, nil
}

// coerceFloat accepts the numeric shapes the upstream is known to send:
// JSON numbers and numeric strings.
func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
