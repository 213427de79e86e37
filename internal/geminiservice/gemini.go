package geminiservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// --- Gemini Configuration ---
const (
	DefaultModel          = "gemini-1.5-flash"
	DefaultRequestTimeout = 60 * time.Second
	structuredMimeType    = "application/json"
	uploadPollInterval    = 2 * time.Second
	uploadPollAttempts    = 30
)

// ErrEmptyResponse is returned when the model answers without any text part.
var ErrEmptyResponse = errors.New("no content found in Gemini response")

// Client wraps a genai client configured for structured meal plan output.
type Client struct {
	genai     *genai.Client
	modelName string
	timeout   time.Duration
	log       zerolog.Logger
}

// NewClient creates the Gemini client. An empty API key is a configuration error.
func NewClient(ctx context.Context, apiKey, modelName string, timeout time.Duration, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Client{
		genai:     gc,
		modelName: modelName,
		timeout:   timeout,
		log:       logger.With().Str("component", "gemini").Str("model", modelName).Logger(),
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.genai.Close()
}

func (c *Client) model() *genai.GenerativeModel {
	m := c.genai.GenerativeModel(c.modelName)
	m.SystemInstruction = genai.NewUserContent(genai.Text(SystemPrompt))
	m.ResponseMIMEType = structuredMimeType
	m.ResponseSchema = MealPlanSchema
	return m
}

// Generate sends the prompt, with any reference documents attached ahead of it, and
// returns the raw text of the first candidate. No retries: the caller falls back instead.
func (c *Client) Generate(ctx context.Context, prompt string, docs ...ReferenceDocument) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	parts := make([]genai.Part, 0, len(docs)+1)
	for _, d := range docs {
		parts = append(parts, genai.FileData{MIMEType: d.MIMEType, URI: d.URI})
	}
	parts = append(parts, genai.Text(prompt))

	c.log.Info().Int("documents", len(docs)).Msg("Calling Gemini API...")
	start := time.Now()

	resp, err := c.model().GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}

	c.log.Info().Dur("latency", time.Since(start)).Msg("Gemini response received")
	return b.String(), nil
}

// UploadReference uploads one reference document and waits until it is usable.
func (c *Client) UploadReference(ctx context.Context, displayName string, r io.Reader, mimeType string) (ReferenceDocument, error) {
	file, err := c.genai.UploadFile(ctx, "", r, &genai.UploadFileOptions{
		DisplayName: displayName,
		MIMEType:    mimeType,
	})
	if err != nil {
		return ReferenceDocument{}, fmt.Errorf("failed to upload %s: %w", displayName, err)
	}

	for i := 0; file.State == genai.FileStateProcessing && i < uploadPollAttempts; i++ {
		select {
		case <-ctx.Done():
			return ReferenceDocument{}, ctx.Err()
		case <-time.After(uploadPollInterval):
		}
		if file, err = c.genai.GetFile(ctx, file.Name); err != nil {
			return ReferenceDocument{}, fmt.Errorf("failed to poll %s: %w", displayName, err)
		}
	}
	if file.State != genai.FileStateActive {
		return ReferenceDocument{}, fmt.Errorf("reference %s not active (state %v)", displayName, file.State)
	}

	c.log.Info().Str("document", displayName).Str("uri", file.URI).Msg("Reference document uploaded")
	return ReferenceDocument{
		DisplayName: displayName,
		URI:         file.URI,
		MIMEType:    file.MIMEType,
	}, nil
}
