// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sathanbabu-png/PDFConverter/internal/pdftext"
	"github.com/sathanbabu-png/PDFConverter/internal/testpdf"
	"github.com/sathanbabu-png/PDFConverter/pkg/types"
)

func init() {
	backoffBase = time.Millisecond
}

func invoicePDF() []byte {
	return testpdf.Build(testpdf.Page{
		{X: 72, Y: 740, Size: 20, S: "Invoice"},
		{X: 72, Y: 700, Size: 10, S: "Item"},
		{X: 300, Y: 700, Size: 10, S: "Qty"},
		{X: 72, Y: 685, Size: 10, S: "Widget"},
		{X: 300, Y: 685, Size: 10, S: "4"},
	})
}

func TestLocal_Word(t *testing.T) {
	l := &Local{Layout: types.LayoutConfig{DetectHeadings: true}}

	data, err := l.Analyze(context.Background(), invoicePDF(), types.FormatWord)
	require.NoError(t, err)
	assert.Equal(t, "Invoice", data.Title)
	assert.Equal(t, "# Invoice\nItem Qty\nWidget 4", data.Content)
	assert.Nil(t, data.Tables)
}

func TestLocal_Excel(t *testing.T) {
	l := &Local{}

	data, err := l.Analyze(context.Background(), invoicePDF(), types.FormatExcel)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Invoice"}, {"Item", "Qty"}, {"Widget", "4"}}, data.Tables)
	assert.Empty(t, data.Content)
}

func TestLocal_Errors(t *testing.T) {
	l := &Local{}

	_, err := l.Analyze(context.Background(), testpdf.Build(testpdf.Page{}), types.FormatWord)
	assert.ErrorIs(t, err, pdftext.ErrNoText)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Analyze(ctx, invoicePDF(), types.FormatWord)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew(t *testing.T) {
	cfg := types.DefaultConfig()

	a, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "local", a.Name())
	assert.Equal(t, "Local data extraction", a.Label())

	cfg.Analyzer = types.AnalyzerGemini
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	cfg.AI.APIKey = "k"
	a, err = New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gemini", a.Name())

	cfg.Analyzer = "ocr"
	_, err = New(cfg)
	assert.Error(t, err)
}

// fakeRenderer returns fixed image bytes and records the page limit.
type fakeRenderer struct {
	images   [][]byte
	err      error
	maxPages int
}

func (f *fakeRenderer) Render(_ []byte, maxPages int) ([][]byte, error) {
	f.maxPages = maxPages
	return f.images, f.err
}

// geminiServer serves canned model replies and captures the last request.
func geminiServer(t *testing.T, replies ...string) (*httptest.Server, *geminiRequest, *int32) {
	t.Helper()
	var calls int32
	var last geminiRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&last))

		reply := replies[len(replies)-1]
		if int(n) <= len(replies) {
			reply = replies[n-1]
		}
		resp := map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": reply}}},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(ts.Close)

	old := geminiBaseURL
	geminiBaseURL = ts.URL
	t.Cleanup(func() { geminiBaseURL = old })
	return ts, &last, &calls
}

func newGemini(ts *httptest.Server, r PageRenderer) *Gemini {
	return &Gemini{APIKey: "secret", Model: "gemini-test", MaxRetries: 1, Client: ts.Client(), Renderer: r}
}

func TestGemini_Word(t *testing.T) {
	ts, last, _ := geminiServer(t, `{"title":"Report","content":"# Report\nBody"}`)
	r := &fakeRenderer{images: [][]byte{[]byte("jpeg-1"), []byte("jpeg-2")}}

	data, err := newGemini(ts, r).Analyze(context.Background(), []byte("%PDF"), types.FormatWord)
	require.NoError(t, err)
	assert.Equal(t, types.ExtractedData{Title: "Report", Content: "# Report\nBody"}, data)
	assert.Equal(t, defaultMaxPages, r.maxPages)

	parts := last.Contents[0].Parts
	require.Len(t, parts, 3)
	assert.Equal(t, "image/jpeg", parts[0].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("jpeg-1")), parts[0].InlineData.Data)
	assert.Equal(t, wordPrompt, parts[2].Text)
	assert.Equal(t, "application/json", last.GenerationConfig.ResponseMimeType)
	assert.Equal(t, []string{"content"}, last.GenerationConfig.ResponseSchema.Required)
}

func TestGemini_Excel(t *testing.T) {
	ts, last, _ := geminiServer(t, `{"tables":[["Item","Qty"],["Widget",4],[null,true]]}`)

	data, err := newGemini(ts, &fakeRenderer{images: [][]byte{{1}}}).Analyze(context.Background(), nil, types.FormatExcel)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Item", "Qty"}, {"Widget", "4"}, {"", "true"}}, data.Tables)
	assert.Equal(t, []string{"tables"}, last.GenerationConfig.ResponseSchema.Required)
	assert.Equal(t, excelPrompt, last.Contents[0].Parts[1].Text)
}

func TestGemini_RetriesInvalidJSON(t *testing.T) {
	ts, _, calls := geminiServer(t, "not json", `{"content":"ok"}`)

	data, err := newGemini(ts, &fakeRenderer{images: [][]byte{{1}}}).Analyze(context.Background(), nil, types.FormatWord)
	require.NoError(t, err)
	assert.Equal(t, "ok", data.Content)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestGemini_InvalidResponse(t *testing.T) {
	ts, _, calls := geminiServer(t, "not json")

	_, err := newGemini(ts, &fakeRenderer{images: [][]byte{{1}}}).Analyze(context.Background(), nil, types.FormatWord)
	assert.ErrorIs(t, err, ErrInvalidAIResponse)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls), "1 initial + 1 retry")
}

func TestGemini_MissingField(t *testing.T) {
	ts, _, _ := geminiServer(t, `{"title":"no tables"}`)

	_, err := newGemini(ts, &fakeRenderer{images: [][]byte{{1}}}).Analyze(context.Background(), nil, types.FormatExcel)
	assert.ErrorIs(t, err, ErrInvalidAIResponse)
}

func TestGemini_HTTPError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCalls int32
		wantErr   string
	}{
		{"rejected key fails at once", http.StatusForbidden, `{"error":"bad key"}`, 1, "403"},
		{"bad request fails at once", http.StatusBadRequest, `{"error":"bad schema"}`, 1, "400"},
		{"server error is retried", http.StatusInternalServerError, `{"error":"internal"}`, 2, "after 1 retries"},
		{"blocked prompt fails at once", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, 1, "SAFETY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()
			old := geminiBaseURL
			geminiBaseURL = ts.URL
			defer func() { geminiBaseURL = old }()

			_, err := newGemini(ts, &fakeRenderer{images: [][]byte{{1}}}).Analyze(context.Background(), nil, types.FormatWord)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
		})
	}
}

func TestGemini_RendererFailure(t *testing.T) {
	boom := errors.New("mupdf failed")
	g := &Gemini{APIKey: "k", Renderer: &fakeRenderer{err: boom}}

	_, err := g.Analyze(context.Background(), nil, types.FormatWord)
	assert.ErrorIs(t, err, boom)

	g.Renderer = &fakeRenderer{}
	_, err = g.Analyze(context.Background(), nil, types.FormatWord)
	assert.Error(t, err)
}

func TestGemini_NoKey(t *testing.T) {
	_, err := (&Gemini{}).Analyze(context.Background(), nil, types.FormatWord)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
