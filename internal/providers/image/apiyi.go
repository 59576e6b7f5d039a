package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("apiyi: api key is required")

// ApiyiOptions configures the apiyi.com generateContent client.
type ApiyiOptions struct {
	APIKey         string
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// ApiyiClient performs HTTP calls to apiyi.com's Gemini-compatible image
// editing endpoint.
type ApiyiClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type generateContentRequest struct {
	Contents         []contentNode     `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type contentNode struct {
	Parts []partNode `json:"parts"`
}

type partNode struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseModalities []string     `json:"responseModalities"`
	ImageConfig        *imageConfig `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []partNode `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	ResponseID string `json:"responseId"`
	Error      *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewApiyiClient constructs a client with sane defaults and injected
// dependencies.
func NewApiyiClient(opts ApiyiOptions) *ApiyiClient {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.apiyi.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-3-pro-image-preview"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &ApiyiClient{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Model returns the configured model identifier.
func (c *ApiyiClient) Model() string {
	return c.model
}

// HasCredentials reports whether the client can perform remote calls.
func (c *ApiyiClient) HasCredentials() bool {
	return c.apiKey != ""
}

// Edit submits the instruction and source image and returns the generated
// image bytes.
func (c *ApiyiClient) Edit(ctx context.Context, req EditRequest) (*EditResult, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	instruction := strings.TrimSpace(req.Instruction)
	if instruction == "" {
		return nil, fmt.Errorf("%w: instruction is required", domain.ErrProviderFailure)
	}
	if len(req.ImageData) == 0 {
		return nil, fmt.Errorf("%w: source image is required", domain.ErrProviderFailure)
	}

	mime := req.ImageMIME
	if mime == "" {
		mime = "image/jpeg"
	}
	aspect := optionString(req.Options, "aspect_ratio")
	if aspect == "" || aspect == "auto" {
		aspect = "1:1"
	}
	resolution := optionString(req.Options, "resolution")
	if resolution == "" {
		resolution = "2K"
	}

	payload := generateContentRequest{
		Contents: []contentNode{{
			Parts: []partNode{
				{Text: instruction},
				{InlineData: &inlineData{
					MIMEType: mime,
					Data:     base64.StdEncoding.EncodeToString(req.ImageData),
				}},
			},
		}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"IMAGE"},
			ImageConfig: &imageConfig{
				AspectRatio: aspect,
				ImageSize:   resolution,
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("apiyi: encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("apiyi: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: apiyi request: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: apiyi read response: %v", domain.ErrProviderFailure, err)
	}

	var decoded generateContentResponse
	if resp.StatusCode >= 300 {
		if err := json.Unmarshal(raw, &decoded); err == nil && decoded.Error != nil {
			return nil, fmt.Errorf("%w: apiyi status %d: %s", domain.ErrProviderFailure, resp.StatusCode, decoded.Error.Message)
		}
		return nil, fmt.Errorf("%w: apiyi status %d: %s", domain.ErrProviderFailure, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: apiyi decode response: %v", domain.ErrProviderFailure, err)
	}
	if len(decoded.Candidates) == 0 {
		return nil, fmt.Errorf("%w: apiyi returned no candidates", domain.ErrProviderFailure)
	}
	candidate := decoded.Candidates[0]
	if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
		return nil, fmt.Errorf("%w: apiyi generation stopped: %s", domain.ErrProviderFailure, candidate.FinishReason)
	}

	for _, part := range candidate.Content.Parts {
		if part.InlineData == nil || part.InlineData.Data == "" {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: apiyi decode image: %v", domain.ErrProviderFailure, err)
		}
		outMIME := part.InlineData.MIMEType
		if outMIME == "" {
			outMIME = "image/png"
		}
		c.logger.Debug().
			Str("model", c.model).
			Str("response_id", decoded.ResponseID).
			Int("bytes", len(data)).
			Msg("apiyi: image generated")
		return &EditResult{
			ImageData:         data,
			MIME:              outMIME,
			ProviderRequestID: decoded.ResponseID,
		}, nil
	}
	return nil, fmt.Errorf("%w: apiyi response had no image data", domain.ErrProviderFailure)
}

var _ Editor = (*ApiyiClient)(nil)
