package ollama

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/ready-to-send/internal/infrastructure/llm/prompt"
	"github.com/kirillkom/ready-to-send/internal/infrastructure/resilience"
)

type Client struct {
	baseURL     string
	planModel   string
	visionModel string
	httpClient  *http.Client
	exec        *resilience.Executor
}

func New(baseURL, planModel, visionModel string, exec *resilience.Executor) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		planModel:   planModel,
		visionModel: visionModel,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		exec:        exec,
	}
}

type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

// ClassifyPlan uses Ollama's JSON mode; the raw response is returned as is.
func (c *Classifier) ClassifyPlan(ctx context.Context, fileNames []string, corpus string) (string, error) {
	reqBody := map[string]any{
		"model":  c.client.planModel,
		"prompt": prompt.BuildPlanPrompt(fileNames, corpus),
		"stream": false,
		"format": "json",
	}
	raw, err := c.client.generate(ctx, reqBody, "plan")
	if err != nil {
		return "", err
	}
	if raw == "" {
		return "{}", nil
	}
	return raw, nil
}

type OCR struct {
	client *Client
}

func NewOCR(client *Client) *OCR {
	return &OCR{client: client}
}

// ExtractImageText runs a multimodal model over one image. Ollama sniffs the
// image format itself, so the media type is not sent.
func (o *OCR) ExtractImageText(ctx context.Context, image []byte, _ string) (string, error) {
	reqBody := map[string]any{
		"model":  o.client.visionModel,
		"prompt": prompt.OCRInstruction,
		"stream": false,
		"images": []string{base64.StdEncoding.EncodeToString(image)},
		"options": map[string]any{
			"temperature": prompt.OCRTemperature,
			"num_predict": prompt.OCRMaxTokens,
		},
	}
	return o.client.generate(ctx, reqBody, "ocr")
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any, operation string) (string, error) {
	var response struct {
		Response string `json:"response"`
	}
	err := c.exec.Execute(ctx, "ollama_"+operation, func(ctx context.Context) error {
		return c.postJSON(ctx, "/api/generate", reqBody, &response, operation)
	}, classifyOllamaError)
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	return strings.TrimSpace(response.Response), nil
}
