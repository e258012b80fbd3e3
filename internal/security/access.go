package security

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Juned-Tuteck/tuteck-erp-ims-backend/internal/cache"
)

const validatePath = "/auth/validate-with-access"

// maxAuthResponse caps how much of the auth service's answer is relayed.
const maxAuthResponse = 1 << 20

// AccessResult is the auth service's answer, relayed verbatim.
type AccessResult struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
	Cached bool   `json:"-"`
}

// AccessConfig configures an AccessValidator.
type AccessConfig struct {
	BaseURL string
	Timeout time.Duration

	// Cache keeps 2xx answers for CacheTTL; nil or a zero TTL disables it.
	Cache    cache.Cache
	CacheTTL time.Duration

	Client *http.Client
	Logger *slog.Logger
}

// AccessValidator forwards access checks to the external auth service.
type AccessValidator struct {
	baseURL string
	client  *http.Client
	cache   cache.Cache
	ttl     time.Duration
	logger  *slog.Logger
}

func NewAccessValidator(cfg AccessConfig) *AccessValidator {
	v := &AccessValidator{
		baseURL: cfg.BaseURL,
		client:  cfg.Client,
		cache:   cfg.Cache,
		ttl:     cfg.CacheTTL,
		logger:  cfg.Logger,
	}
	if v.client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		v.client = &http.Client{Timeout: timeout}
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

func (v *AccessValidator) cacheKey(token string, body []byte) string {
	return "access:" + Digest([]byte(token), body)
}

// Validate posts body with the caller's Authorization header to the auth
// service. Any status the service answers with is a result, not an error;
// errors mean the service could not be reached.
func (v *AccessValidator) Validate(ctx context.Context, authorization string, body []byte) (AccessResult, error) {
	if v.baseURL == "" {
		return AccessResult{}, ErrAuthUnset
	}
	token := BearerToken(authorization)
	if token == "" {
		return AccessResult{}, ErrMissingToken
	}

	useCache := v.cache != nil && v.ttl > 0
	key := v.cacheKey(token, body)
	if useCache {
		res, ok, err := cache.GetJSON[AccessResult](ctx, v.cache, key)
		if err != nil {
			v.logger.WarnContext(ctx, "access cache read failed", "error", err)
		}
		if ok {
			res.Cached = true
			return res, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+validatePath, bytes.NewReader(body))
	if err != nil {
		return AccessResult{}, fmt.Errorf("build access request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authorization)

	resp, err := v.client.Do(req)
	if err != nil {
		return AccessResult{}, fmt.Errorf("call auth service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxAuthResponse))
	if err != nil {
		return AccessResult{}, fmt.Errorf("read auth response: %w", err)
	}
	res := AccessResult{Status: resp.StatusCode, Body: raw}

	if useCache && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := cache.SetJSON(ctx, v.cache, key, res, v.ttl); err != nil {
			v.logger.WarnContext(ctx, "access cache write failed", "error", err)
		}
	}
	return res, nil
}
