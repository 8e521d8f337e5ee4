package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ytsubs/internal/config"
	apperrors "ytsubs/internal/errors"
	"ytsubs/internal/model"
)

const (
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultGeminiModel    = "gemini-2.0-flash"
)

// geminiTranslator implements Translator against the Gemini API, which
// accepts a YouTube URL plus a time range directly as generation input
type geminiTranslator struct {
	client   *http.Client
	endpoint string
	model    string
}

// NewGeminiTranslator creates a Translator backed by the Gemini API
func NewGeminiTranslator() Translator {
	return &geminiTranslator{
		client: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		endpoint: defaultGeminiEndpoint,
		model:    defaultGeminiModel,
	}
}

// NewGeminiTranslatorWithEndpoint creates a Translator against a custom
// endpoint (for testing)
func NewGeminiTranslatorWithEndpoint(endpoint string) Translator {
	return &geminiTranslator{
		client:   &http.Client{Timeout: 5 * time.Minute},
		endpoint: endpoint,
		model:    defaultGeminiModel,
	}
}

// Request/response structures for the generateContent call
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text     string          `json:"text,omitempty"`
	FileData *geminiFileData `json:"file_data,omitempty"`

	VideoMetadata *geminiVideoMetadata `json:"video_metadata,omitempty"`
}

type geminiFileData struct {
	FileURI string `json:"file_uri"`
}

type geminiVideoMetadata struct {
	StartOffset string `json:"start_offset,omitempty"`
	EndOffset   string `json:"end_offset,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// TranslateWindow asks the model for translated subtitles covering one
// time window of the video
func (g *geminiTranslator) TranslateWindow(ctx context.Context, apiKey, videoURL string, window model.BatchWindow, cfg config.TranslationConfig) (string, error) {
	if apiKey == "" {
		return "", apperrors.New(apperrors.CodeInvalidArg, "API key is required")
	}
	if videoURL == "" {
		return "", apperrors.New(apperrors.CodeInvalidArg, "video URL is required")
	}

	prompt := fmt.Sprintf(
		"Generate %s subtitles for the spoken content of this video between %ds and %ds. "+
			"Return one subtitle line per spoken sentence, prefixed with its start time in seconds "+
			"like [12.5]. Return only the subtitle lines, no explanations.",
		cfg.TargetLanguage, window.StartSeconds, window.EndSeconds)

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{
				Parts: []geminiPart{
					{
						FileData: &geminiFileData{FileURI: videoURL},
						VideoMetadata: &geminiVideoMetadata{
							StartOffset: fmt.Sprintf("%ds", window.StartSeconds),
							EndOffset:   fmt.Sprintf("%ds", window.EndSeconds),
						},
					},
					{Text: prompt},
				},
			},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to marshal request")
	}

	url := fmt.Sprintf("%s/%s:generateContent", g.endpoint, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		// Transport failures say nothing about the credential, so they
		// classify like a degraded service
		return "", apperrors.Wrap(err, apperrors.CodeUnavailable, "translation API request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeUnavailable, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyStatus(resp.StatusCode, respBody)
	}

	var result geminiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternal, "failed to parse response")
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.New(apperrors.CodeExternal, "empty response from translation API")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return strings.TrimSpace(text.String()), nil
}

// classifyStatus is the single place HTTP statuses become error codes.
// 429 means this credential is throttled; 500 and 503 mean the service
// itself is struggling; everything else is a fatal request error.
func classifyStatus(status int, body []byte) error {
	message := apiErrorMessage(body)
	switch status {
	case http.StatusTooManyRequests:
		return apperrors.New(apperrors.CodeRateLimited, message)
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return apperrors.New(apperrors.CodeUnavailable, message)
	default:
		return apperrors.New(apperrors.CodeExternal,
			fmt.Sprintf("translation API error (status %d): %s", status, message))
	}
}

// apiErrorMessage extracts the error message from an API error body
func apiErrorMessage(body []byte) string {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return strings.TrimSpace(string(body))
}
