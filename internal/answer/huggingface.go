package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yucabot/yucabot/internal/log"
	"github.com/yucabot/yucabot/internal/text"
)

const defaultGenerateTimeout = 25 * time.Second

// HuggingFaceConfig configures the HuggingFace text-generation candidate.
type HuggingFaceConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	MaxNewTokens int
	Temperature  float32
	Timeout      time.Duration
}

// HuggingFace generates answers through the HuggingFace inference API.
type HuggingFace struct {
	cfg    HuggingFaceConfig
	client *http.Client
	logger log.Logger
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxNewTokens int     `json:"max_new_tokens"`
	Temperature  float32 `json:"temperature,omitempty"`
}

// generateResponse covers both response forms the inference API returns:
// a sequence of candidates or a single object, each carrying generated_text.
type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

// NewHuggingFace creates the candidate. A missing key is not an error
// here: the chain treats the candidate construction site as optional and
// callers skip unconfigured candidates at wiring time.
func NewHuggingFace(cfg HuggingFaceConfig, logger log.Logger) *HuggingFace {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co"
	}
	if cfg.MaxNewTokens <= 0 {
		cfg.MaxNewTokens = 200
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultGenerateTimeout
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &HuggingFace{cfg: cfg, client: &http.Client{}, logger: logger}
}

// Name implements Provider.
func (h *HuggingFace) Name() string { return "huggingface/" + h.cfg.Model }

// Generate implements Provider. A single attempt with a bounded timeout;
// the chain handles advancing to the next candidate.
func (h *HuggingFace) Generate(ctx context.Context, prompt string) (string, error) {
	if h.cfg.APIKey == "" {
		return "", fmt.Errorf("huggingface generation credential not configured")
	}

	callCtx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			MaxNewTokens: h.cfg.MaxNewTokens,
			Temperature:  h.cfg.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling generate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s", h.cfg.BaseURL, h.cfg.Model)
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building generate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling inference API: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading generate response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference API error %d: %s", resp.StatusCode, text.Truncate(string(body), 512))
	}

	generated, err := decodeGeneratedText(body)
	if err != nil {
		return "", err
	}

	// Some models echo the prompt ahead of the completion.
	generated = strings.TrimSpace(strings.TrimPrefix(generated, prompt))
	return generated, nil
}

// decodeGeneratedText accepts both a candidate sequence (first candidate
// used) and a flat generated-text object.
func decodeGeneratedText(body []byte) (string, error) {
	var candidates []generateResponse
	if err := json.Unmarshal(body, &candidates); err == nil {
		if len(candidates) == 0 {
			return "", fmt.Errorf("empty candidate sequence in generate response")
		}
		return candidates[0].GeneratedText, nil
	}

	var single generateResponse
	if err := json.Unmarshal(body, &single); err == nil {
		return single.GeneratedText, nil
	}

	return "", fmt.Errorf("unrecognized generate response shape")
}
