package content

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aurorahealth/medscheduler/internal/observability/metrics"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

// Kind selects the prompt and fallback template for a piece of content.
type Kind string

const (
	KindConfirmation Kind = "confirmation"
	KindReminder     Kind = "reminder"
	KindSummary      Kind = "summary"
)

// EmailFields carries the structured data for a confirmation or reminder email.
type EmailFields struct {
	PatientName           string
	DoctorName            string
	Specialty             string
	Date                  string
	Time                  string
	Reason                string
	QuestionnaireRequired bool
}

// SummaryFields carries the questionnaire answers to summarize.
type SummaryFields struct {
	ChiefComplaint     string
	Symptoms           string
	MedicalHistory     string
	CurrentMedications string
}

// Email is generated subject + HTML body. Both are always non-empty.
type Email struct {
	Subject string
	HTML    string
}

// GeneratorConfig holds static settings for content generation.
type GeneratorConfig struct {
	ModelID     string
	ClinicName  string
	ClinicPhone string
}

// Generator produces human-readable email and summary text, preferring an
// LLM and degrading to fixed templates on any failure. It never returns an
// error to its caller.
type Generator struct {
	llm         LLMClient
	modelID     string
	clinicName  string
	clinicPhone string
	metrics     *metrics.ContentMetrics
	logger      *logging.Logger
}

// NewGenerator creates a content generator. llm may be nil, in which case
// every call takes the template path.
func NewGenerator(llm LLMClient, cfg GeneratorConfig, m *metrics.ContentMetrics, logger *logging.Logger) *Generator {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ClinicName == "" {
		cfg.ClinicName = "Aurora Health Clinic"
	}
	return &Generator{
		llm:         llm,
		modelID:     cfg.ModelID,
		clinicName:  cfg.ClinicName,
		clinicPhone: cfg.ClinicPhone,
		metrics:     m,
		logger:      logger.Component("content"),
	}
}

// Email generates a confirmation or reminder email. The model's body is kept
// when it parses; the subject is always the deterministic template-derived
// one. Any failure falls back to the fixed template.
func (g *Generator) Email(ctx context.Context, kind Kind, f EmailFields) Email {
	if kind != KindConfirmation && kind != KindReminder {
		kind = KindConfirmation
	}
	if g.llm == nil {
		g.metrics.ObserveGenerated(string(kind), "template")
		return g.templateEmail(kind, f)
	}

	resp, err := g.llm.Complete(ctx, LLMRequest{
		Model:       g.modelID,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: g.emailPrompt(kind, f)}},
		MaxTokens:   1024,
		Temperature: 0.7,
	})
	if err != nil {
		g.logger.Warn("llm email generation failed, using template", "kind", kind, "error", err)
		g.metrics.ObserveGenerated(string(kind), "template")
		return g.templateEmail(kind, f)
	}

	_, body, ok := parseSubjectBody(resp.Text)
	if !ok {
		g.logger.Warn("could not parse llm email response, using template", "kind", kind)
		g.metrics.ObserveGenerated(string(kind), "template")
		return g.templateEmail(kind, f)
	}

	body = g.scrubBody(body)
	g.metrics.ObserveGenerated(string(kind), "llm")
	return Email{
		// The model's subject suggestion is discarded on purpose: subjects
		// stay deterministic across providers and retries.
		Subject: deterministicSubject(kind, f),
		HTML:    body,
	}
}

// Summary generates a questionnaire summary, falling back to field
// concatenation when the LLM is unavailable or failing.
func (g *Generator) Summary(ctx context.Context, f SummaryFields) string {
	if g.llm == nil {
		g.metrics.ObserveGenerated(string(KindSummary), "template")
		return FallbackSummary(f)
	}

	resp, err := g.llm.Complete(ctx, LLMRequest{
		Model:       g.modelID,
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: summaryPrompt(f)}},
		MaxTokens:   512,
		Temperature: 0.3,
	})
	if err != nil || strings.TrimSpace(resp.Text) == "" {
		if err != nil {
			g.logger.Warn("llm summary generation failed, using fallback", "error", err)
		}
		g.metrics.ObserveGenerated(string(KindSummary), "template")
		return FallbackSummary(f)
	}

	g.metrics.ObserveGenerated(string(KindSummary), "llm")
	return strings.TrimSpace(resp.Text)
}

func (g *Generator) emailPrompt(kind Kind, f EmailFields) string {
	reason := f.Reason
	if reason == "" {
		reason = "General consultation"
	}

	var b strings.Builder
	if kind == KindConfirmation {
		b.WriteString("Generate a warm, professional appointment confirmation email for a medical appointment.\n\n")
	} else {
		b.WriteString("Generate a friendly appointment reminder email for a medical appointment happening in 24 hours.\n\n")
	}
	fmt.Fprintf(&b, "Patient Name: %s\n", f.PatientName)
	fmt.Fprintf(&b, "Doctor: %s (%s)\n", f.DoctorName, f.Specialty)
	fmt.Fprintf(&b, "Date: %s\n", f.Date)
	fmt.Fprintf(&b, "Time: %s\n", f.Time)
	fmt.Fprintf(&b, "Reason: %s\n", reason)
	if kind == KindConfirmation {
		if f.QuestionnaireRequired {
			b.WriteString("Questionnaire Required: Yes - patient needs to fill the pre-visit questionnaire in the app\n")
		} else {
			b.WriteString("Questionnaire Required: No\n")
		}
	}
	fmt.Fprintf(&b, "Clinic Name: %s\n", g.clinicName)
	fmt.Fprintf(&b, "Clinic Phone: %s\n\n", g.clinicPhone)

	b.WriteString("Generate a short subject line and a professional HTML email body with the appointment details, ")
	b.WriteString("an instruction to arrive 10 minutes early, and the clinic contact line.\n\n")
	b.WriteString("Constraints:\n")
	b.WriteString("- Do NOT include any web links or 'Click here' text. The app is not hosted.\n")
	fmt.Fprintf(&b, "- Use the clinic name %q and phone %q instead of placeholders.\n\n", g.clinicName, g.clinicPhone)
	b.WriteString("Format the response as:\nSUBJECT: [subject line]\nBODY: [HTML body with inline styles]\n")
	return b.String()
}

func summaryPrompt(f SummaryFields) string {
	var b strings.Builder
	b.WriteString("Summarize the following pre-visit medical questionnaire in a concise, professional format:\n\n")
	fmt.Fprintf(&b, "Chief Complaint: %s\n", f.ChiefComplaint)
	fmt.Fprintf(&b, "Symptoms: %s\n", f.Symptoms)
	fmt.Fprintf(&b, "Medical History: %s\n", f.MedicalHistory)
	fmt.Fprintf(&b, "Current Medications: %s\n\n", f.CurrentMedications)
	b.WriteString("Highlight the chief complaint, current symptoms, relevant history, medications, and any urgent concerns. ")
	b.WriteString("Keep the summary under 300 words.")
	return b.String()
}

// parseSubjectBody extracts the SUBJECT:/BODY: sections of a model response.
func parseSubjectBody(text string) (subject, body string, ok bool) {
	var bodyLines []string
	inBody := false

	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, "SUBJECT:"):
			subject = strings.TrimSpace(strings.TrimPrefix(line, "SUBJECT:"))
		case strings.HasPrefix(line, "BODY:"):
			inBody = true
			if rest := strings.TrimSpace(strings.TrimPrefix(line, "BODY:")); rest != "" {
				bodyLines = append(bodyLines, rest)
			}
		case inBody:
			bodyLines = append(bodyLines, line)
		}
	}

	if subject == "" || len(bodyLines) == 0 {
		return "", "", false
	}
	return subject, strings.Join(bodyLines, "\n"), true
}

var (
	anchorRe    = regexp.MustCompile(`(?s)<a[^>]*>(.*?)</a>`)
	clickHereRe = regexp.MustCompile(`(?i)click here[^.<]*`)
	openFenceRe = regexp.MustCompile("^```[a-zA-Z]*\\s*")
	endFenceRe  = regexp.MustCompile("```\\s*$")
)

// scrubBody removes hyperlinks and markdown fences the model may have added
// despite the prompt constraints.
func (g *Generator) scrubBody(body string) string {
	body = strings.ReplaceAll(body, "[Your Clinic Name]", g.clinicName)
	body = strings.ReplaceAll(body, "[Your Clinic Phone Number]", g.clinicPhone)
	body = anchorRe.ReplaceAllString(body, "$1")
	body = clickHereRe.ReplaceAllString(body, "Please complete the pre-visit questionnaire in the app before your appointment.")
	body = openFenceRe.ReplaceAllString(strings.TrimSpace(body), "")
	body = endFenceRe.ReplaceAllString(body, "")
	return strings.TrimSpace(body)
}

func deterministicSubject(kind Kind, f EmailFields) string {
	if kind == KindReminder {
		return fmt.Sprintf("24-Hour Reminder: %s Appt Tomorrow", f.DoctorName)
	}
	return fmt.Sprintf("Appointment Booked: %s on %s", f.DoctorName, f.Date)
}

var tagRe = regexp.MustCompile(`<[^<]+?>`)

// PlainText derives a plain-text rendering of an HTML body for the text/plain
// alternative part.
func PlainText(html string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(html, ""))
}
