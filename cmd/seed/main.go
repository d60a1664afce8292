// Command seed populates the users table with demo doctor accounts,
// at least two per specialty. It is idempotent: doctors already present
// (by email) are skipped.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	"github.com/aurorahealth/medscheduler/cmd/mainconfig"
	"github.com/aurorahealth/medscheduler/internal/auth"
	appconfig "github.com/aurorahealth/medscheduler/internal/config"
	"github.com/aurorahealth/medscheduler/internal/users"
	"github.com/aurorahealth/medscheduler/pkg/logging"
)

const seedPassword = "Doctor@123"

var doctors = []users.User{
	{Email: "dr.smith.cardio@medscheduler.com", FullName: "Dr. Sarah Smith", Specialty: "Cardiologist", Phone: "+1-555-0101",
		Bio: "Experienced cardiologist with 15 years of practice. Specializes in heart disease prevention and treatment."},
	{Email: "dr.anderson.cardio@medscheduler.com", FullName: "Dr. John Anderson", Specialty: "Cardiologist", Phone: "+1-555-0109",
		Bio: "Cardiologist specializing in interventional cardiology and heart rhythm disorders."},
	{Email: "dr.johnson.general@medscheduler.com", FullName: "Dr. Michael Johnson", Specialty: "General Physician", Phone: "+1-555-0102",
		Bio: "General physician providing comprehensive primary care services."},
	{Email: "dr.taylor.general@medscheduler.com", FullName: "Dr. Jennifer Taylor", Specialty: "General Physician", Phone: "+1-555-0110",
		Bio: "Family medicine physician with expertise in preventive care and chronic disease management."},
	{Email: "dr.williams.neuro@medscheduler.com", FullName: "Dr. Emily Williams", Specialty: "Neurologist", Phone: "+1-555-0103",
		Bio: "Neurologist specializing in brain and nervous system disorders."},
	{Email: "dr.martinez.neuro@medscheduler.com", FullName: "Dr. Carlos Martinez", Specialty: "Neurologist", Phone: "+1-555-0111",
		Bio: "Neurologist with expertise in stroke, epilepsy, and movement disorders."},
	{Email: "dr.brown.ortho@medscheduler.com", FullName: "Dr. James Brown", Specialty: "Orthopedic Surgeon", Phone: "+1-555-0104",
		Bio: "Orthopedic surgeon with expertise in bone and joint treatments."},
	{Email: "dr.thomas.ortho@medscheduler.com", FullName: "Dr. Christopher Thomas", Specialty: "Orthopedic Surgeon", Phone: "+1-555-0112",
		Bio: "Orthopedic surgeon specializing in sports medicine and joint replacement surgery."},
	{Email: "dr.davis.dermat@medscheduler.com", FullName: "Dr. Patricia Davis", Specialty: "Dermatologist", Phone: "+1-555-0105",
		Bio: "Dermatologist specializing in skin, hair, and nail conditions."},
	{Email: "dr.garcia.dermat@medscheduler.com", FullName: "Dr. Maria Garcia", Specialty: "Dermatologist", Phone: "+1-555-0113",
		Bio: "Dermatologist with expertise in cosmetic dermatology and skin cancer treatment."},
	{Email: "dr.miller.pedia@medscheduler.com", FullName: "Dr. Robert Miller", Specialty: "Pediatrician", Phone: "+1-555-0106",
		Bio: "Pediatrician providing specialized care for children and adolescents."},
	{Email: "dr.jackson.pedia@medscheduler.com", FullName: "Dr. Amanda Jackson", Specialty: "Pediatrician", Phone: "+1-555-0114",
		Bio: "Pediatrician specializing in developmental pediatrics and childhood immunizations."},
	{Email: "dr.wilson.psych@medscheduler.com", FullName: "Dr. Lisa Wilson", Specialty: "Psychiatrist", Phone: "+1-555-0107",
		Bio: "Psychiatrist specializing in mental health and behavioral disorders."},
	{Email: "dr.rodriguez.psych@medscheduler.com", FullName: "Dr. Daniel Rodriguez", Specialty: "Psychiatrist", Phone: "+1-555-0115",
		Bio: "Psychiatrist with expertise in anxiety disorders, depression, and cognitive behavioral therapy."},
	{Email: "dr.moore.onco@medscheduler.com", FullName: "Dr. David Moore", Specialty: "Oncologist", Phone: "+1-555-0108",
		Bio: "Oncologist specializing in cancer diagnosis and treatment."},
	{Email: "dr.lee.onco@medscheduler.com", FullName: "Dr. Susan Lee", Specialty: "Oncologist", Phone: "+1-555-0116",
		Bio: "Medical oncologist specializing in breast cancer and hematologic malignancies."},
}

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel).Component("seed")

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	store := users.NewStore(dynamodb.NewFromConfig(awsCfg), cfg.UsersTable, logger)

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		logger.Error("failed to hash seed password", "error", err)
		os.Exit(1)
	}

	created, skipped := 0, 0
	for _, doctor := range doctors {
		doctor.Role = users.RoleDoctor
		doctor.PasswordHash = hash

		err := store.Create(context.Background(), &doctor)
		if errors.Is(err, users.ErrEmailTaken) {
			logger.Info("doctor already exists, skipping", "email", doctor.Email)
			skipped++
			continue
		}
		if err != nil {
			logger.Error("failed to create doctor", "email", doctor.Email, "error", err)
			os.Exit(1)
		}
		logger.Info("created doctor", "name", doctor.FullName, "specialty", doctor.Specialty)
		created++
	}

	logger.Info("seeding complete", "created", created, "skipped", skipped)
}
