package content

import (
	"fmt"
	"strings"
)

// templateEmail renders the fixed string-substitution template for a kind.
// Guaranteed to produce a non-empty subject and body.
func (g *Generator) templateEmail(kind Kind, f EmailFields) Email {
	if kind == KindReminder {
		return Email{
			Subject: fmt.Sprintf("Reminder: Your Appointment Tomorrow with %s", f.DoctorName),
			HTML:    g.reminderTemplate(f),
		}
	}
	return Email{
		Subject: fmt.Sprintf("Appointment Confirmed with %s - %s", f.DoctorName, f.Date),
		HTML:    g.confirmationTemplate(f),
	}
}

func (g *Generator) confirmationTemplate(f EmailFields) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`)
	b.WriteString(`<div style="max-width: 600px; margin: 0 auto; padding: 20px;">`)
	b.WriteString(`<h2 style="color: #2563eb;">Appointment Confirmed</h2>`)
	fmt.Fprintf(&b, `<p>Dear %s,</p><p>Your appointment has been successfully booked!</p>`, f.PatientName)
	b.WriteString(`<div style="background-color: #f3f4f6; padding: 15px; border-radius: 5px; margin: 20px 0;">`)
	fmt.Fprintf(&b, `<p><strong>Doctor:</strong> %s (%s)</p>`, f.DoctorName, f.Specialty)
	fmt.Fprintf(&b, `<p><strong>Date:</strong> %s</p>`, f.Date)
	fmt.Fprintf(&b, `<p><strong>Time:</strong> %s</p>`, f.Time)
	if f.Reason != "" {
		fmt.Fprintf(&b, `<p><strong>Reason:</strong> %s</p>`, f.Reason)
	}
	b.WriteString(`</div>`)
	if f.QuestionnaireRequired {
		b.WriteString(`<div style="background-color: #fef3c7; padding: 15px; border-radius: 5px; margin: 20px 0; border-left: 4px solid #f59e0b;">`)
		b.WriteString(`<p><strong>Important:</strong> Please complete the pre-visit questionnaire in the app before your appointment. This helps the doctor prepare for your visit.</p></div>`)
	}
	b.WriteString(`<p>Please arrive 10 minutes before your scheduled time.</p>`)
	fmt.Fprintf(&b, `<p>If you need to reschedule or cancel, please contact %s at %s at least 24 hours in advance.</p>`, g.clinicName, g.clinicPhone)
	fmt.Fprintf(&b, `<p>Best regards,<br>%s</p>`, g.clinicName)
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func (g *Generator) reminderTemplate(f EmailFields) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">`)
	b.WriteString(`<div style="max-width: 600px; margin: 0 auto; padding: 20px;">`)
	b.WriteString(`<h2 style="color: #dc2626;">Appointment Reminder</h2>`)
	fmt.Fprintf(&b, `<p>Dear %s,</p><p>This is a reminder that you have an appointment <strong>tomorrow</strong>.</p>`, f.PatientName)
	b.WriteString(`<div style="background-color: #fef2f2; padding: 15px; border-radius: 5px; margin: 20px 0; border-left: 4px solid #dc2626;">`)
	fmt.Fprintf(&b, `<p><strong>Doctor:</strong> %s (%s)</p>`, f.DoctorName, f.Specialty)
	fmt.Fprintf(&b, `<p><strong>Date:</strong> %s</p>`, f.Date)
	fmt.Fprintf(&b, `<p><strong>Time:</strong> %s</p>`, f.Time)
	if f.Reason != "" {
		fmt.Fprintf(&b, `<p><strong>Reason:</strong> %s</p>`, f.Reason)
	}
	b.WriteString(`</div>`)
	b.WriteString(`<p>Please arrive 10 minutes before your scheduled time.</p>`)
	fmt.Fprintf(&b, `<p>If you need to reschedule or cancel, please contact %s at %s as soon as possible.</p>`, g.clinicName, g.clinicPhone)
	fmt.Fprintf(&b, `<p>Best regards,<br>%s</p>`, g.clinicName)
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// FallbackSummary concatenates the non-empty questionnaire fields in a fixed
// order, each prefixed with its label. Returns the sentinel when every field
// is empty.
func FallbackSummary(f SummaryFields) string {
	var parts []string
	if f.ChiefComplaint != "" {
		parts = append(parts, "Chief Complaint: "+f.ChiefComplaint)
	}
	if f.Symptoms != "" {
		parts = append(parts, "Symptoms: "+f.Symptoms)
	}
	if f.MedicalHistory != "" {
		parts = append(parts, "Medical History: "+f.MedicalHistory)
	}
	if f.CurrentMedications != "" {
		parts = append(parts, "Current Medications: "+f.CurrentMedications)
	}
	if len(parts) == 0 {
		return "No summary available"
	}
	return strings.Join(parts, "\n")
}
