package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
)

// maxDiagnosticBytes caps how much of a bad response body is carried back to
// the caller.
const maxDiagnosticBytes = 4 << 10

// Client calls the model server over HTTP. The contract is the Flask-style
// endpoint: multipart field "image" in, {"prediction": ..., "confidence": ...}
// out.
type Client struct {
	endpoint string
	http     *http.Client
}

func New(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type payload struct {
	Prediction string   `json:"prediction"`
	Confidence *float64 `json:"confidence"`
}

// Classify implementasi Classifier port.
func (c *Client) Classify(ctx context.Context, image []byte, filename string) (domain.Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return domain.Result{}, &domain.InferenceError{Reason: domain.ReasonBadOutput, Err: err}
	}
	if _, err := fw.Write(image); err != nil {
		return domain.Result{}, &domain.InferenceError{Reason: domain.ReasonBadOutput, Err: err}
	}
	if err := mw.Close(); err != nil {
		return domain.Result{}, &domain.InferenceError{Reason: domain.ReasonBadOutput, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return domain.Result{}, &domain.InferenceError{Reason: domain.ReasonBadOutput, Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return domain.Result{}, &domain.InferenceError{Reason: domain.ReasonTimeout, Err: err}
		}
		return domain.Result{}, &domain.InferenceError{Reason: domain.ReasonExitStatus, Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxDiagnosticBytes))

	if resp.StatusCode != http.StatusOK {
		return domain.Result{}, &domain.InferenceError{
			Reason:     domain.ReasonExitStatus,
			Diagnostic: fmt.Sprintf("model server returned %d: %s", resp.StatusCode, raw),
		}
	}

	return parse(raw)
}

// parse validates the loosely-typed model output into the closed contract.
func parse(raw []byte) (domain.Result, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Result{}, &domain.InferenceError{
			Reason:     domain.ReasonBadOutput,
			Diagnostic: fmt.Sprintf("unparseable model output: %s", raw),
			Err:        err,
		}
	}
	label := domain.Label(p.Prediction)
	if !domain.KnownLabel(label) {
		return domain.Result{}, &domain.InferenceError{
			Reason:     domain.ReasonBadOutput,
			Diagnostic: fmt.Sprintf("unknown label %q in model output", p.Prediction),
		}
	}
	if p.Confidence == nil || *p.Confidence < 0 || *p.Confidence > 1 {
		return domain.Result{}, &domain.InferenceError{
			Reason:     domain.ReasonBadOutput,
			Diagnostic: fmt.Sprintf("confidence out of range in model output: %s", raw),
		}
	}
	return domain.Result{Label: label, Confidence: *p.Confidence}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return true
	}
	return false
}
