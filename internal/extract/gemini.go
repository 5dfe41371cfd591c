package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/agentstation/coursemap/pkg/constants"
	"github.com/agentstation/coursemap/pkg/errors"
	"github.com/agentstation/coursemap/pkg/ingest"
	"github.com/agentstation/coursemap/pkg/logging"
)

const backendGemini = "gemini"

// Gemini extracts pages with the Gemini API. The whole PDF is sent with
// every request together with the page to read.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini extractor. An empty model selects the default.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, &errors.ConfigError{Component: backendGemini, Message: "api key is not set", Err: errors.ErrAPIKeyRequired}
	}
	if model == "" {
		model = constants.DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.WrapAPI(backendGemini, 0, err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Model returns the model name in use.
func (g *Gemini) Model() string { return g.model }

// ExtractPage implements Extractor.
func (g *Gemini) ExtractPage(ctx context.Context, p Page) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.PageExtractTimeout)
	defer cancel()

	content := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: Prompt(p)},
			{InlineData: &genai.Blob{MIMEType: "application/pdf", Data: p.Data}},
		},
	}}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}

	logging.FromContext(ctx).Debug().
		Str("model", g.model).
		Int("previous", len(p.Previous)).
		Msg("Requesting page extraction")

	res, err := g.client.Models.GenerateContent(ctx, g.model, content, config)
	if err != nil {
		return nil, wrapGenAIError(err)
	}
	text := strings.TrimSpace(res.Text())
	if text == "" {
		return nil, errors.WrapAPI(backendGemini, 0, errors.ErrEmptyResponse)
	}
	return ingest.CleanJSON(text)
}

// wrapGenAIError keeps the HTTP status so rate limits and outages are
// retried while rejected requests are not. Errors without a status come
// from the transport and are treated as an outage.
func wrapGenAIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return errors.WrapAPI(backendGemini, apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return errors.WrapAPI(backendGemini, apiErrPtr.Code, err)
	}
	return errors.WrapAPI(backendGemini, 0, fmt.Errorf("%w: %w", errors.ErrUnavailable, err))
}
