package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"trends-go/pkg/logger"
)

// ClientConfig configures the HTTP trends client.
type ClientConfig struct {
	Endpoint       string
	APIKey         string
	Timeout        time.Duration
	RateLimitQPS   float64
	RateLimitBurst int
	Backoff        *Backoff
}

// Client calls the trends API over fasthttp with retry and a QPS cap.
// Network-level failures are always classified transient; application-level
// error strings are classified by vocabulary.
type Client struct {
	endpoint   string
	apiKey     string
	timeout    time.Duration
	httpClient *fasthttp.Client
	limiter    *rate.Limiter
	backoff    *Backoff
	log        *logger.Logger
}

func NewClient(config ClientConfig, log *logger.Logger) *Client {
	backoff := config.Backoff
	if backoff == nil {
		backoff = DefaultBackoff()
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if config.RateLimitQPS > 0 {
		burst := config.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimitQPS), burst)
	}

	return &Client{
		endpoint:   config.Endpoint,
		apiKey:     config.APIKey,
		timeout:    timeout,
		httpClient: &fasthttp.Client{},
		limiter:    limiter,
		backoff:    backoff,
		log:        log.WithComponent("api_client"),
	}
}

// FetchTimeseries fetches one timeseries, retrying transient failures per
// the configured backoff. Permanent errors surface immediately; after
// retry exhaustion the last error is returned unchanged.
func (c *Client) FetchTimeseries(ctx context.Context, params QueryParams) (*TrendsResponse, error) {
	if params.APIKey == "" {
		params.APIKey = c.apiKey
	}

	log := c.log.WithField("query", params.Query)

	attempt := 0
	var result *TrendsResponse
	err := c.backoff.Execute(ctx, func() error {
		attempt++
		log.WithField("attempt", attempt).Info("Requesting trends timeseries")

		resp, err := c.doFetch(ctx, params)
		if err != nil {
			log.WithError(err).WithField("attempt", attempt).Warn("Trends request failed")
			return err
		}

		result = resp
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *Client) doFetch(ctx context.Context, params QueryParams) (*TrendsResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint + "?" + params.Values().Encode())
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", "trends-go/1.0")
	req.Header.Set("Accept", "application/json")

	if err := c.httpClient.DoTimeout(req, resp, c.timeout); err != nil {
		// Connection failures, timeouts, truncated responses.
		return nil, &TransientError{Err: err}
	}

	if err := classifyStatusCode(resp.StatusCode(), string(resp.Body())); err != nil {
		return nil, err
	}

	var result TrendsResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		// A 200 with an undecodable body is most likely a truncated
		// or mid-failure response.
		return nil, transientf("failed to decode trends response: %v", err)
	}

	if err := classifyResponseError(result.Error); err != nil {
		return nil, err
	}

	return &result, nil
}
