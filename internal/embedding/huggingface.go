package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/yucabot/yucabot/internal/log"
	"github.com/yucabot/yucabot/internal/text"
)

const (
	// defaultRequestTimeout bounds a single inference call. The hosted
	// inference API can take this long when the model is cold-loading.
	defaultRequestTimeout = 20 * time.Second

	// defaultMaxRetries is how many times a transient failure is retried
	// after the first attempt.
	defaultMaxRetries = 2

	// defaultBackoffBase is the initial retry delay; each retry doubles it.
	defaultBackoffBase = 500 * time.Millisecond

	// defaultMaxInputChars is the hard input cut for the inference API.
	// Independent from (and larger than) the storage content cap.
	defaultMaxInputChars = 8000
)

// HuggingFaceConfig configures the HuggingFace inference provider.
type HuggingFaceConfig struct {
	APIKey    string
	BaseURL   string // e.g. https://api-inference.huggingface.co
	Model     string
	Dimension int // target vector dimension

	MaxInputChars int           // 0 = defaultMaxInputChars
	Timeout       time.Duration // 0 = defaultRequestTimeout
	MaxRetries    int           // per-call retries after the first attempt; <0 disables
	BackoffBase   time.Duration // 0 = defaultBackoffBase

	// RequestsPerSecond throttles outbound calls. 0 = unlimited.
	RequestsPerSecond float64
}

// HuggingFace generates embeddings through the HuggingFace inference API.
//
// The wire contract follows the inference endpoint: the request carries
// {"inputs": ..., "options": {"wait_for_model": true}} and the response may
// be a flat vector, a per-token matrix, or a wrapped object. All three are
// normalized by decodeVector and the result is reconciled to the target
// dimension.
type HuggingFace struct {
	cfg     HuggingFaceConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  log.Logger
}

// embedRequest is the inference API payload. wait_for_model keeps the call
// open while a cold model loads instead of returning 503.
type embedRequest struct {
	Inputs  string       `json:"inputs"`
	Options embedOptions `json:"options"`
}

type embedOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// NewHuggingFace creates the provider. Returns ErrNotConfigured when no
// API key is present so callers can select a fallback at startup.
func NewHuggingFace(cfg HuggingFaceConfig, logger log.Logger) (*HuggingFace, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: HUGGINGFACE_API_KEY is not set", ErrNotConfigured)
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("target dimension must be positive, got %d", cfg.Dimension)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co"
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = defaultMaxInputChars
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if logger == nil {
		logger = log.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &HuggingFace{
		cfg:     cfg,
		client:  &http.Client{},
		limiter: limiter,
		logger:  logger,
	}, nil
}

// Name implements Provider.
func (h *HuggingFace) Name() string { return "huggingface" }

// Embed implements Provider. The input is normalized and truncated to the
// provider input limit before the call. Transient failures (transport
// errors, timeouts, 429, 5xx) are retried with exponential backoff; other
// provider error responses surface immediately.
func (h *HuggingFace) Embed(ctx context.Context, input string) ([]float32, error) {
	cleaned := text.Normalize(input)
	if cleaned == "" {
		return nil, ErrEmptyInput
	}
	truncated := text.Truncate(cleaned, h.cfg.MaxInputChars)

	var vector []float32
	attempt := 0
	op := func() error {
		attempt++
		v, err := h.requestEmbedding(ctx, truncated)
		if err != nil {
			var pe *ProviderError
			if errors.As(err, &pe) && !retryableStatus(pe.StatusCode) {
				return backoff.Permanent(err)
			}
			h.logger.Warn("embedding attempt failed",
				"provider", h.Name(), "attempt", attempt, "error", err)
			return err
		}
		vector = v
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = h.cfg.BackoffBase
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	retries := uint64(0)
	if h.cfg.MaxRetries > 0 {
		retries = uint64(h.cfg.MaxRetries)
	}

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, retries), ctx)); err != nil {
		var pe *ProviderError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &ProviderError{Provider: h.Name(), Message: err.Error()}
	}

	return ReconcileDimension(vector, h.cfg.Dimension), nil
}

// requestEmbedding performs one inference call with its own timeout.
func (h *HuggingFace) requestEmbedding(ctx context.Context, input string) ([]float32, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(embedRequest{
		Inputs:  input,
		Options: embedOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling embed request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s", h.cfg.BaseURL, h.cfg.Model)
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building embed request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling inference API: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading inference response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Provider:   h.Name(),
			StatusCode: resp.StatusCode,
			Message:    text.Truncate(string(body), 512),
		}
	}

	vector, err := decodeVector(body)
	if err != nil {
		return nil, &ProviderError{Provider: h.Name(), Message: err.Error()}
	}
	return vector, nil
}

// retryableStatus reports whether an HTTP status is worth retrying.
// StatusCode 0 means a transport-level failure, which is retryable.
func retryableStatus(code int) bool {
	return code == 0 || code == http.StatusTooManyRequests || code >= 500
}
