// Package backend talks to a remote diagnosis predictor over HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medibot/domain/diagnosis"
	"medibot/internal/errors"
	"medibot/ports"

	"github.com/tidwall/gjson"
)

// SourceRemote tags assessments produced by the remote predictor.
const SourceRemote = "remote"

const (
	predictPath    = "/api/predict"
	defaultTimeout = 5 * time.Second
	serviceName    = "diagnosis backend"
)

// HTTPBackend posts symptom items to <base>/api/predict
type HTTPBackend struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPBackend creates a backend client; timeout <= 0 uses the default
func NewHTTPBackend(baseURL string, timeout time.Duration) ports.DiagnosisBackend {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Items []diagnosis.Item `json:"items"`
}

// Predict sends items and decodes the assessment
func (b *HTTPBackend) Predict(ctx context.Context, items []diagnosis.Item) (*diagnosis.Assessment, error) {
	payload, err := json.Marshal(predictRequest{Items: items})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode predict request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+predictPath, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.ExternalServiceError(serviceName,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}
	if !gjson.ValidBytes(body) {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("response is not valid JSON"))
	}

	return decodeAssessment(body), nil
}

// decodeAssessment reads the fields it knows and ignores the rest
func decodeAssessment(body []byte) *diagnosis.Assessment {
	parsed := gjson.ParseBytes(body)

	a := &diagnosis.Assessment{
		Risk:    diagnosis.Risk(strings.ToLower(parsed.Get("risk").String())),
		Summary: parsed.Get("summary").String(),
		Source:  SourceRemote,
	}
	parsed.Get("differential").ForEach(func(_, d gjson.Result) bool {
		a.Differential = append(a.Differential, diagnosis.Differential{
			Label:      d.Get("label").String(),
			Confidence: d.Get("confidence").Float(),
		})
		return true
	})
	parsed.Get("recommendations").ForEach(func(_, r gjson.Result) bool {
		a.Recommendations = append(a.Recommendations, r.String())
		return true
	})
	return a
}
