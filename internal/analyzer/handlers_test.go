package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"agriloop-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	analysis *domain.WasteAnalysis
	err      error
}

func (f *fakeClient) AnalyzeWaste(_ context.Context, _ string) (*domain.WasteAnalysis, error) {
	return f.analysis, f.err
}

func analyzeApp(client Client) *fiber.App {
	app := fiber.New()
	h := &Handlers{Client: client}
	app.Post("/analyze-waste", h.AnalyzeWaste)
	return app
}

func postAnalyze(t *testing.T, app *fiber.App, payload map[string]interface{}) (map[string]interface{}, int) {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/analyze-waste", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	return result, resp.StatusCode
}

func TestAnalyzeWaste_MissingImage(t *testing.T) {
	app := analyzeApp(&fakeClient{})
	_, status := postAnalyze(t, app, map[string]interface{}{})
	assert.Equal(t, 400, status)
}

func TestAnalyzeWaste_Success(t *testing.T) {
	app := analyzeApp(&fakeClient{analysis: &domain.WasteAnalysis{
		ResidueType: "Rice Straw",
		Confidence:  0.9,
		PurityScore: 80,
	}})

	result, status := postAnalyze(t, app, map[string]interface{}{"image": "aGVsbG8="})
	assert.Equal(t, 200, status)
	assert.Equal(t, "success", result["status"])
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, "Rice Straw", data["residue_type"])
	// Unset optional fields resolved to defaults
	assert.Equal(t, "Medium", data["transport_feasibility"])
}

func TestAnalyzeWaste_ClientFailureReturnsFallback(t *testing.T) {
	app := analyzeApp(&fakeClient{err: errors.New("upstream down")})

	result, status := postAnalyze(t, app, map[string]interface{}{"image": "aGVsbG8="})
	assert.Equal(t, 200, status)
	data, _ := result["data"].(map[string]interface{})
	assert.Equal(t, "Unknown Biomass", data["residue_type"])
	assert.Equal(t, "₹800 - ₹1200", data["estimated_price_range"])
}
