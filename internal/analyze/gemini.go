// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sathanbabu-png/PDFConverter/internal/httputil"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

// ErrInvalidAIResponse is returned when the model reply is not the JSON
// object the response schema asks for.
var ErrInvalidAIResponse = errors.New("invalid response from AI")

const (
	wordPrompt = `Analyze the provided PDF pages. Reconstruct the document content in structured Markdown.
Preserve headings, paragraphs, lists, and bold text. If there are tables, represent them as Markdown tables.
Return the output in a JSON format with a "content" field containing the Markdown text and a "title" field.`

	excelPrompt = `Analyze the provided PDF pages. Extract all tabular data. If there are multiple tables, consolidate them into a single logical dataset or return the most significant table.
Return the output as a JSON object with a "tables" field (which is a 2D array of values) and a "title" field.`

	defaultModel    = "gemini-2.0-flash"
	defaultMaxPages = 5
)

// geminiBaseURL is the Gemini REST endpoint prefix. Package-level var for
// test substitution.
var geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// backoffBase controls the base duration for exponential backoff between
// failed attempts. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// permanentError marks a failure that another attempt cannot fix, such as
// a rejected API key or a blocked prompt.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// PageRenderer rasterizes the leading pages of a PDF to JPEG.
type PageRenderer interface {
	Render(pdf []byte, maxPages int) ([][]byte, error)
}

// Gemini sends page images to the Gemini generateContent API with a
// format-specific prompt and JSON response schema.
type Gemini struct {
	APIKey     string
	Model      string
	MaxPages   int
	MaxRetries int
	Client     *http.Client
	Renderer   PageRenderer
}

func (g *Gemini) Name() string  { return string(types.AnalyzerGemini) }
func (g *Gemini) Label() string { return "AI document analysis" }

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	InlineData *geminiBlob `json:"inlineData,omitempty"`
	Text       string      `json:"text,omitempty"`
}

type geminiBlob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string  `json:"responseMimeType"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

// schema is the OpenAPI subset Gemini accepts for structured output.
type schema struct {
	Type       string             `json:"type"`
	Properties map[string]*schema `json:"properties,omitempty"`
	Items      *schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// geminiResult is the JSON object the schema asks the model to return.
type geminiResult struct {
	Title   string  `json:"title"`
	Content *string `json:"content"`
	Tables  [][]any `json:"tables"`
}

func responseSchema(format types.OutputFormat) *schema {
	if format == types.FormatExcel {
		return &schema{
			Type: "OBJECT",
			Properties: map[string]*schema{
				"tables": {Type: "ARRAY", Items: &schema{Type: "ARRAY", Items: &schema{Type: "STRING"}}},
				"title":  {Type: "STRING"},
			},
			Required: []string{"tables"},
		}
	}
	return &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"content": {Type: "STRING"},
			"title":   {Type: "STRING"},
		},
		Required: []string{"content"},
	}
}

func prompt(format types.OutputFormat) string {
	if format == types.FormatExcel {
		return excelPrompt
	}
	return wordPrompt
}

// Analyze renders the first MaxPages pages and asks the model for Markdown
// content (Word) or a 2-D table (Excel).
func (g *Gemini) Analyze(ctx context.Context, pdf []byte, format types.OutputFormat) (types.ExtractedData, error) {
	if g.APIKey == "" {
		return types.ExtractedData{}, ErrMissingAPIKey
	}
	maxPages := g.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	images, err := g.Renderer.Render(pdf, maxPages)
	if err != nil {
		return types.ExtractedData{}, err
	}
	if len(images) == 0 {
		return types.ExtractedData{}, fmt.Errorf("PDF has no pages to analyze")
	}

	body, err := json.Marshal(buildRequest(images, format))
	if err != nil {
		return types.ExtractedData{}, fmt.Errorf("marshaling request: %w", err)
	}

	maxRetries := g.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return callWithRetry(ctx, maxRetries, func() (types.ExtractedData, error) {
		return g.generate(ctx, body, format)
	})
}

func buildRequest(images [][]byte, format types.OutputFormat) geminiRequest {
	parts := make([]geminiPart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, geminiPart{InlineData: &geminiBlob{
			MimeType: "image/jpeg",
			Data:     base64.StdEncoding.EncodeToString(img),
		}})
	}
	parts = append(parts, geminiPart{Text: prompt(format)})

	return geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema(format),
		},
	}
}

func (g *Gemini) generate(ctx context.Context, body []byte, format types.OutputFormat) (types.ExtractedData, error) {
	model := g.Model
	if model == "" {
		model = defaultModel
	}
	url := fmt.Sprintf("%s/%s:generateContent", geminiBaseURL, model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return types.ExtractedData{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return types.ExtractedData{}, fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode < http.StatusInternalServerError && !httputil.Retryable(resp.StatusCode) {
			return types.ExtractedData{}, &permanentError{err}
		}
		return types.ExtractedData{}, err
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return types.ExtractedData{}, fmt.Errorf("decoding Gemini response: %w", err)
	}
	if gResp.PromptFeedback != nil && gResp.PromptFeedback.BlockReason != "" {
		return types.ExtractedData{}, &permanentError{fmt.Errorf("Gemini blocked the request: %s", gResp.PromptFeedback.BlockReason)}
	}
	if len(gResp.Candidates) == 0 {
		return types.ExtractedData{}, fmt.Errorf("Gemini API returned no candidates")
	}

	var text strings.Builder
	for _, p := range gResp.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return parseResult(text.String(), format)
}

// parseResult decodes the model's JSON reply. Table cells of any JSON type
// are rendered as strings.
func parseResult(text string, format types.OutputFormat) (types.ExtractedData, error) {
	var r geminiResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &r); err != nil {
		return types.ExtractedData{}, fmt.Errorf("%w: %v", ErrInvalidAIResponse, err)
	}

	data := types.ExtractedData{Title: r.Title}
	switch format {
	case types.FormatExcel:
		if r.Tables == nil {
			return types.ExtractedData{}, fmt.Errorf("%w: missing tables field", ErrInvalidAIResponse)
		}
		data.Tables = make([][]string, len(r.Tables))
		for i, row := range r.Tables {
			data.Tables[i] = make([]string, len(row))
			for j, v := range row {
				data.Tables[i][j] = cellString(v)
			}
		}
	default:
		if r.Content == nil {
			return types.ExtractedData{}, fmt.Errorf("%w: missing content field", ErrInvalidAIResponse)
		}
		data.Content = *r.Content
	}
	return data, nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// callWithRetry runs fn with exponential backoff between failed attempts.
// A permanentError ends the loop at once.
func callWithRetry(ctx context.Context, maxRetries int, fn func() (types.ExtractedData, error)) (types.ExtractedData, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return types.ExtractedData{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		data, err := fn()
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return types.ExtractedData{}, ctx.Err()
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return types.ExtractedData{}, perm.err
		}
		lastErr = err
	}
	return types.ExtractedData{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
