package mail

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/rs/zerolog"

	domain "github.com/bryanwahyu/fracture-ai/internal/domain/predictions"
	"github.com/bryanwahyu/fracture-ai/internal/domain/users"
)

const attachmentName = "xray-result.jpg"

// Dispatcher sends the analysis report over SMTP with the X-ray embedded.
// It implements the Notifier port.
type Dispatcher struct {
	client    *gomail.Client
	from      string
	artifacts domain.ArtifactStore
	log       zerolog.Logger
}

func NewDispatcher(host string, port int, username, password, from string, artifacts domain.ArtifactStore, log zerolog.Logger) (*Dispatcher, error) {
	cli, err := gomail.NewClient(host,
		gomail.WithPort(port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(username),
		gomail.WithPassword(password),
		gomail.WithTimeout(30*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{
		client:    cli,
		from:      from,
		artifacts: artifacts,
		log:       log.With().Str("component", "mail-dispatcher").Logger(),
	}, nil
}

// Send kirim report email. Kalau artifact belum bisa diambil, skip saja:
// a missing attachment is a transient storage condition, not a pipeline
// defect.
func (d *Dispatcher) Send(ctx context.Context, user *users.User, p *domain.Prediction) error {
	img, err := d.artifacts.Fetch(ctx, p.ImageURL)
	if err != nil {
		d.log.Warn().Err(err).
			Str("prediction_id", string(p.ID)).
			Str("image_url", p.ImageURL).
			Msg("artifact not available, skipping report email")
		return nil
	}
	defer img.Close()

	body, err := renderBody(user, p)
	if err != nil {
		return &domain.DeliveryError{Recipient: user.Email, Err: err}
	}

	msg := gomail.NewMsg()
	if err := msg.From(d.from); err != nil {
		return &domain.DeliveryError{Recipient: user.Email, Err: err}
	}
	if err := msg.To(user.Email); err != nil {
		return &domain.DeliveryError{Recipient: user.Email, Err: err}
	}
	msg.Subject("Your FractureAI Analysis Report")
	msg.SetBodyString(gomail.TypeTextHTML, body)
	if err := msg.EmbedReader(attachmentName, img); err != nil {
		return &domain.DeliveryError{Recipient: user.Email, Err: err}
	}

	if err := d.client.DialAndSendWithContext(ctx, msg); err != nil {
		return &domain.DeliveryError{Recipient: user.Email, Err: err}
	}
	return nil
}

var bodyTmpl = template.Must(template.New("report").Parse(`
<body style="background-color:#f3f4f6;margin:0;padding:0;font-family:sans-serif;">
  <div style="max-width:600px;margin:20px auto;background-color:#ffffff;border-radius:8px;border:1px solid #e5e7eb;">
    <div style="background-color:#111827;color:#ffffff;padding:24px;text-align:center;">
      <h1 style="margin:0;font-size:28px;">FractureAI Report</h1>
    </div>
    <div style="padding:32px;">
      <p style="color:#374151;">Hello {{.FullName}},</p>
      <p style="color:#374151;">Here is the AI-generated report for the submitted X-ray image.</p>
      <div style="text-align:center;margin:32px 0;">
        <img src="cid:{{.AttachmentName}}" alt="Submitted X-Ray" style="max-width:100%;border:1px solid #d1d5db;border-radius:8px;"/>
      </div>
      <div style="border:1px solid #e5e7eb;border-radius:8px;">
        <div style="padding:20px;border-bottom:1px solid #e5e7eb;">
          <h3 style="margin-top:0;color:#111827;">Patient Details</h3>
          <p style="color:#4b5563;"><strong>Patient ID:</strong> {{.PatientRef}}</p>
          <p style="color:#4b5563;"><strong>Name:</strong> {{.PatientName}}</p>
          <p style="color:#4b5563;"><strong>Age:</strong> {{.PatientAge}}</p>
          <p style="color:#4b5563;"><strong>Sex:</strong> {{.PatientSex}}</p>
        </div>
        <div style="padding:20px;background-color:#f9fafb;">
          <h3 style="margin-top:0;color:#111827;">Analysis Results</h3>
          <p style="color:#4b5563;"><strong>Prediction:</strong> <span style="font-weight:bold;color:#b91c1c;">{{.Result}}</span></p>
          <p style="color:#4b5563;"><strong>Confidence:</strong> <span style="font-weight:bold;color:#111827;">{{.Confidence}}%</span></p>
        </div>
      </div>
      <div style="margin-top:32px;text-align:center;font-size:12px;color:#6b7280;">
        <p style="margin:0;"><strong>Disclaimer:</strong> This is an AI-generated analysis and is not a substitute for a professional medical diagnosis. Please consult a qualified doctor for any medical concerns.</p>
      </div>
    </div>
  </div>
</body>
`))

type bodyData struct {
	FullName       string
	AttachmentName string
	PatientRef     string
	PatientName    string
	PatientAge     int
	PatientSex     domain.Sex
	Result         string
	Confidence     string
}

func renderBody(user *users.User, p *domain.Prediction) (string, error) {
	ref := p.PatientRef
	if ref == "" {
		ref = "N/A"
	}
	data := bodyData{
		FullName:       user.FullName,
		AttachmentName: attachmentName,
		PatientRef:     ref,
		PatientName:    p.PatientName,
		PatientAge:     p.PatientAge,
		PatientSex:     p.PatientSex,
		Result:         strings.ReplaceAll(string(p.Result), "_", " "),
		Confidence:     formatPercent(p.Confidence),
	}
	var sb strings.Builder
	if err := bodyTmpl.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// formatPercent renders confidence the same way the UI does (two decimals).
func formatPercent(confidence float64) string {
	return fmt.Sprintf("%.2f", confidence*100)
}
