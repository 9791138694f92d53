// Package remote classifies reviews with a hosted text-classification model
// that speaks the huggingface inference api.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"reviewscope-backend/internal/components/assert"
	"reviewscope-backend/internal/components/telemetry"
	"reviewscope-backend/internal/sentiment"
	"reviewscope-backend/pkg/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

const (
	report_classifier_decode = "classifier.decode"
	report_classifier_label  = "classifier.label"
	report_classifier_dump   = "classifier.dump"
)

var tracer = otel.Tracer("internal/sentiment/remote")

// DefaultEndpoint is the hosted multilingual 1-5 star review model.
const DefaultEndpoint = "https://api-inference.huggingface.co/models/nlptown/bert-base-multilingual-uncased-sentiment"

type Options struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	// RequestsPerSecond limits outgoing requests, 0 disables limiting.
	RequestsPerSecond float64
	// CloudflareBypass mimics a browser tls fingerprint for endpoints
	// behind cloudflare.
	CloudflareBypass bool
	// DumpDir, if set, receives a text dump of every http exchange.
	DumpDir string
}

type Classifier struct {
	endpoint string
	http     *resty.Client
	tel      telemetry.API
}

func New(options Options, tel telemetry.API) *Classifier {
	assert.NotEmptyStr(options.Endpoint)
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("remote_classifier", tel)

	client := resty.New()
	if options.Timeout > 0 {
		client.SetTimeout(options.Timeout)
	}
	if options.APIKey != "" {
		client.SetAuthToken(options.APIKey)
	}
	if options.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("content-type", "application/json")

	// the model answers 503 while it is loading and 429 when throttled
	client.SetRetryCount(3)
	client.SetRetryWaitTime(time.Second)
	client.SetRetryMaxWaitTime(time.Second * 10)
	client.AddRetryCondition(func(res *resty.Response, err error) bool {
		if err != nil {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}
		return res.StatusCode() == http.StatusTooManyRequests || res.StatusCode() >= 500
	})

	if options.RequestsPerSecond > 0 {
		burst := int(options.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(client, tel)
	restyutil.Trace(client, tracer)
	if options.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(options.DumpDir)
		if err != nil {
			tel.ReportBroken(report_classifier_dump, err, options.DumpDir)
		} else {
			restyutil.Dump(client, output, func(id string, err error) {
				tel.ReportWarning(report_classifier_dump, err, id)
			})
		}
	}

	return &Classifier{endpoint: options.Endpoint, http: client, tel: tel}
}

type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// decodePredictions accepts both [[{label, score}]] and [{label, score}].
func decodePredictions(body []byte) ([]prediction, error) {
	var nested [][]prediction
	err := json.Unmarshal(body, &nested)
	if err == nil {
		var out []prediction
		for _, group := range nested {
			out = append(out, group...)
		}
		return out, nil
	}
	var flat []prediction
	err = json.Unmarshal(body, &flat)
	if err != nil {
		return nil, err
	}
	return flat, nil
}

type apiError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

func (c *Classifier) Classify(ctx context.Context, text string) (sentiment.Label, error) {
	if strings.TrimSpace(text) == "" {
		return sentiment.Unknown, fmt.Errorf("cannot classify empty text")
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"inputs":  text,
			"options": map[string]any{"wait_for_model": true},
		}).
		Post(c.endpoint)
	if err != nil {
		return sentiment.Unknown, fmt.Errorf("classify: %w", err)
	}
	if res.IsError() {
		var apiErr apiError
		if json.Unmarshal(res.Body(), &apiErr) == nil && apiErr.Error != "" {
			return sentiment.Unknown, fmt.Errorf("classify: %s: %s", res.Status(), apiErr.Error)
		}
		return sentiment.Unknown, fmt.Errorf("classify: %s", res.Status())
	}

	predictions, err := decodePredictions(res.Body())
	if err != nil {
		c.tel.ReportBroken(report_classifier_decode, err, res.String())
		return sentiment.Unknown, fmt.Errorf("decode predictions: %w", err)
	}
	if len(predictions) == 0 {
		return sentiment.Unknown, fmt.Errorf("model returned no predictions")
	}

	best := predictions[0]
	for _, p := range predictions[1:] {
		if p.Score > best.Score {
			best = p
		}
	}
	label, ok := sentiment.MatchLabel(best.Label)
	if !ok {
		c.tel.ReportBroken(report_classifier_label, best.Label)
		return sentiment.Unknown, fmt.Errorf("unrecognized model label %q", best.Label)
	}
	return label, nil
}

func (c *Classifier) Close() error {
	c.http.GetClient().CloseIdleConnections()
	return nil
}
