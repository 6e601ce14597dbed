// Package openai talks to OpenAI-compatible chat completion APIs for image
// OCR and folder planning.
package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/ready-to-send/internal/core/domain"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/llm/prompt"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/resilience"
)

const (
	DefaultOCRModel  = "gpt-4.1-mini"
	DefaultPlanModel = "gpt-4.1-mini"
)

type Config struct {
	APIKey    string
	BaseURL   string
	OCRModel  string
	PlanModel string

	// HTTPClient overrides the transport; nil uses a client with a two
	// minute timeout.
	HTTPClient *http.Client
}

type Client struct {
	api       *openai.Client
	ocrModel  string
	planModel string
	exec      *resilience.Executor
}

func New(cfg Config, exec *resilience.Executor) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	// HTTPDoer is an interface; a nil *http.Client must not reach it.
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	} else {
		apiCfg.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	}

	ocrModel := strings.TrimSpace(cfg.OCRModel)
	if ocrModel == "" {
		ocrModel = DefaultOCRModel
	}
	planModel := strings.TrimSpace(cfg.PlanModel)
	if planModel == "" {
		planModel = DefaultPlanModel
	}

	return &Client{
		api:       openai.NewClientWithConfig(apiCfg),
		ocrModel:  ocrModel,
		planModel: planModel,
		exec:      exec,
	}
}

type OCR struct {
	client *Client
}

func NewOCR(client *Client) *OCR {
	return &OCR{client: client}
}

// ExtractImageText sends the image inline as a data URI.
func (o *OCR) ExtractImageText(ctx context.Context, image []byte, mimeType string) (string, error) {
	dataURI := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image)
	req := openai.ChatCompletionRequest{
		Model: o.client.ocrModel,
		// go-openai drops a literal zero temperature from the request body.
		Temperature: math.SmallestNonzeroFloat32,
		MaxTokens:   prompt.OCRMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt.OCRInstruction},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURI,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}
	text, err := o.client.complete(ctx, "openai_ocr", req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// ClassifyPlan returns the model's raw JSON text. An empty reply becomes "{}".
func (c *Classifier) ClassifyPlan(ctx context.Context, fileNames []string, corpus string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.client.planModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt.BuildPlanPrompt(fileNames, corpus)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	raw, err := c.client.complete(ctx, "openai_plan", req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(raw) == "" {
		return "{}", nil
	}
	return raw, nil
}

func (c *Client) complete(ctx context.Context, operation string, req openai.ChatCompletionRequest) (string, error) {
	start := time.Now()
	content, err := resilience.Call(ctx, c.exec, operation, func(ctx context.Context) (string, error) {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", domain.WrapError(domain.ErrMalformedResponse, operation, errors.New("no choices in response"))
		}
		return resp.Choices[0].Message.Content, nil
	}, classifyError)
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	slog.Debug("openai_response",
		"operation", operation,
		"model", req.Model,
		"content_length", len(content),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func statusCode(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}

func classifyError(err error) resilience.Verdict {
	if resilience.IsCancellation(err) || domain.IsKind(err, domain.ErrMalformedResponse) {
		return resilience.Verdict{}
	}
	if code, ok := statusCode(err); ok {
		retryable := resilience.RetryableStatus(code)
		return resilience.Verdict{Retryable: retryable, RecordFailure: retryable}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.Verdict{Retryable: true, RecordFailure: true}
	}
	return resilience.Verdict{RecordFailure: true}
}

func wrapTemporaryIfNeeded(operation string, err error) error {
	if domain.IsKind(err, domain.ErrTemporary) || resilience.IsCancellation(err) {
		return err
	}
	if resilience.IsCircuitOpen(err) || classifyError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}
