package process

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
)

const maxDiagnosticBytes = 4 << 10

// Runner invokes the model as a local process (e.g. python3 predict.py
// <image-path>) and parses the JSON it prints on stdout. Stderr is captured
// as the diagnostic for every failure mode.
type Runner struct {
	command string
	args    []string
	timeout time.Duration
}

func NewRunner(command string, args []string, timeout time.Duration) *Runner {
	return &Runner{command: command, args: args, timeout: timeout}
}

// Classify implementasi Classifier port.
func (r *Runner) Classify(ctx context.Context, image []byte, filename string) (domain.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// tulis image ke temp file dulu, model script baca dari path
	tmp, err := os.CreateTemp("", "xray-*"+filepath.Ext(filename))
	if err != nil {
		return domain.Result{}, &domain.InferenceError{Reason: domain.ReasonExitStatus, Err: err}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(image); err != nil {
		tmp.Close()
		return domain.Result{}, &domain.InferenceError{Reason: domain.ReasonExitStatus, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return domain.Result{}, &domain.InferenceError{Reason: domain.ReasonExitStatus, Err: err}
	}

	args := append(append([]string{}, r.args...), tmp.Name())
	cmd := exec.CommandContext(ctx, r.command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// jalankan model process
	err = cmd.Run()
	if ctx.Err() != nil {
		return domain.Result{}, &domain.InferenceError{
			Reason:     domain.ReasonTimeout,
			Diagnostic: fmt.Sprintf("model process exceeded %s", r.timeout),
			Err:        ctx.Err(),
		}
	}
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			return domain.Result{}, &domain.InferenceError{
				Reason:     domain.ReasonExitStatus,
				Diagnostic: fmt.Sprintf("model process exited with %d: %s", ee.ExitCode(), trim(stderr.Bytes())),
				Err:        err,
			}
		}
		return domain.Result{}, &domain.InferenceError{Reason: domain.ReasonExitStatus, Err: err}
	}

	return parse(stdout.Bytes(), stderr.Bytes())
}

func parse(stdout, stderr []byte) (domain.Result, error) {
	var p struct {
		Prediction string   `json:"prediction"`
		Confidence *float64 `json:"confidence"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(stdout), &p); err != nil {
		return domain.Result{}, &domain.InferenceError{
			Reason:     domain.ReasonBadOutput,
			Diagnostic: fmt.Sprintf("unparseable model output: stdout=%s stderr=%s", trim(stdout), trim(stderr)),
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
			Diagnostic: fmt.Sprintf("confidence out of range in model output: %s", trim(stdout)),
		}
	}
	return domain.Result{Label: label, Confidence: *p.Confidence}, nil
}

func trim(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if len(b) > maxDiagnosticBytes {
		return b[:maxDiagnosticBytes]
	}
	return b
}
