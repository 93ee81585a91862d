package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agriloop-backend/internal/domain"
)

// Client defines what we need from the external waste analyzer.
type Client interface {
	AnalyzeWaste(ctx context.Context, imageBase64 string) (*domain.WasteAnalysis, error)
}

// GeminiClient is a Client backed by the Gemini generateContent HTTP API.
type GeminiClient struct {
	BaseURL string // defaults to the public Gemini API
	APIKey  string
	Model   string
	Client  *http.Client
}

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const analyzePrompt = "Analyze this agricultural image. Identify residue type, moisture, purity, price in INR, and CO2 impact."
const systemInstruction = "You are an expert Indian agricultural agronomist. Use Indian Rupees (₹). Respond with JSON only."

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// geminiAnalysis is the model's JSON payload. Field names follow the
// response schema sent in generationConfig, which is camelCase; the ledger's
// snake_case WasteAnalysis is mapped from it after decoding.
type geminiAnalysis struct {
	ResidueType              string   `json:"residueType"`
	SuggestedUses            []string `json:"suggestedUses"`
	TransportFeasibility     string   `json:"transportFeasibility"`
	EnvironmentalImpactScore int      `json:"environmentalImpactScore"`
	EstimatedPriceRange      string   `json:"estimatedPriceRange"`
	Confidence               float64  `json:"confidence"`
	MoistureContent          string   `json:"moistureContent"`
	PurityScore              int      `json:"purityScore"`
	CO2Saved                 float64  `json:"co2Saved"`
}

// analysisResponseSchema constrains the model to the exact keys
// geminiAnalysis decodes.
var analysisResponseSchema = map[string]interface{}{
	"type": "OBJECT",
	"properties": map[string]interface{}{
		"residueType": map[string]interface{}{
			"type":        "STRING",
			"description": "Specific type of crop residue (e.g., Rice Straw, Wheat Stubble, Sugarcane Bagasse).",
		},
		"suggestedUses": map[string]interface{}{
			"type":        "ARRAY",
			"items":       map[string]interface{}{"type": "STRING"},
			"description": "List of 3 best monetizable uses.",
		},
		"transportFeasibility": map[string]interface{}{
			"type":        "STRING",
			"description": "Assessment of transport feasibility (High, Medium, Low).",
		},
		"environmentalImpactScore": map[string]interface{}{
			"type":        "INTEGER",
			"description": "Score 1-10 indicating potential carbon offset.",
		},
		"estimatedPriceRange": map[string]interface{}{
			"type":        "STRING",
			"description": "Estimated market price range per ton in Indian Rupees (₹).",
		},
		"confidence": map[string]interface{}{
			"type":        "NUMBER",
			"description": "Confidence level 0-1.",
		},
		"moistureContent": map[string]interface{}{
			"type":        "STRING",
			"description": "Visual estimate of moisture content percentage (e.g., '10-15%').",
		},
		"purityScore": map[string]interface{}{
			"type":        "INTEGER",
			"description": "Visual estimate of material purity 0-100 (freedom from dirt/weeds).",
		},
		"co2Saved": map[string]interface{}{
			"type":        "NUMBER",
			"description": "Estimated kg of CO2 saved per ton if recycled instead of burned.",
		},
	},
	"required": []string{
		"residueType", "suggestedUses", "transportFeasibility",
		"environmentalImpactScore", "estimatedPriceRange", "confidence",
		"moistureContent", "purityScore", "co2Saved",
	},
}

func (c *GeminiClient) AnalyzeWaste(ctx context.Context, imageBase64 string) (*domain.WasteAnalysis, error) {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 30 * time.Second}
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("gemini: GEMINI_API_KEY is not set")
	}
	base := c.BaseURL
	if base == "" {
		base = defaultGeminiBaseURL
	}
	model := c.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	// Data URLs arrive as "data:image/jpeg;base64,<payload>"; strip the prefix.
	cleanBase64 := imageBase64
	if i := strings.Index(cleanBase64, ","); i >= 0 && strings.HasPrefix(cleanBase64, "data:") {
		cleanBase64 = cleanBase64[i+1:]
	}

	bodyBytes, _ := json.Marshal(map[string]interface{}{
		"contents": []map[string]interface{}{{
			"parts": []map[string]interface{}{
				{"inline_data": map[string]string{"mime_type": "image/jpeg", "data": cleanBase64}},
				{"text": analyzePrompt},
			},
		}},
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]string{{"text": systemInstruction}},
		},
		"generationConfig": map[string]interface{}{
			"response_mime_type": "application/json",
			"response_schema":    analysisResponseSchema,
		},
	})

	url := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(base, "/"), model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini error: status %d body: %s", resp.StatusCode, string(respBody))
	}

	var data geminiResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return nil, fmt.Errorf("gemini response decode: %w", err)
	}
	if len(data.Candidates) == 0 || len(data.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	var raw geminiAnalysis
	if err := json.Unmarshal([]byte(data.Candidates[0].Content.Parts[0].Text), &raw); err != nil {
		return nil, fmt.Errorf("gemini analysis decode: %w", err)
	}
	return &domain.WasteAnalysis{
		ResidueType:              raw.ResidueType,
		SuggestedUses:            domain.StringList(raw.SuggestedUses),
		TransportFeasibility:     raw.TransportFeasibility,
		EnvironmentalImpactScore: raw.EnvironmentalImpactScore,
		EstimatedPriceRange:      raw.EstimatedPriceRange,
		Confidence:               raw.Confidence,
		MoistureContent:          raw.MoistureContent,
		PurityScore:              raw.PurityScore,
		CO2Saved:                 raw.CO2Saved,
	}, nil
}
