package questionnaires

// Questionnaire is the pre-visit intake record. At most one exists per
// appointment; submissions upsert by appointment id.
type Questionnaire struct {
	ID                 string `dynamodbav:"id" json:"id"`
	AppointmentID      string `dynamodbav:"appointmentId" json:"appointment_id"`
	PatientID          string `dynamodbav:"patientId" json:"patient_id"`
	ChiefComplaint     string `dynamodbav:"chiefComplaint,omitempty" json:"chief_complaint,omitempty"`
	Symptoms           string `dynamodbav:"symptoms,omitempty" json:"symptoms,omitempty"`
	MedicalHistory     string `dynamodbav:"medicalHistory,omitempty" json:"medical_history,omitempty"`
	CurrentMedications string `dynamodbav:"currentMedications,omitempty" json:"current_medications,omitempty"`
	Allergies          string `dynamodbav:"allergies,omitempty" json:"allergies,omitempty"`
	AdditionalNotes    string `dynamodbav:"additionalNotes,omitempty" json:"additional_notes,omitempty"`
	Summary            string `dynamodbav:"summary,omitempty" json:"summary,omitempty"`
	SubmittedAt        string `dynamodbav:"submittedAt" json:"submitted_at"`
}
