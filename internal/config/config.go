package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// AWS / DynamoDB
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	UsersTable          string
	AppointmentsTable   string
	QuestionnairesTable string
	RemindersTable      string

	// Auth
	JWTSecret      string
	AccessTokenTTL time.Duration

	// Agents
	UseMockAgents bool

	// Content generation
	GeminiAPIKey   string
	GeminiModelID  string
	BedrockModelID string

	// Email
	EmailProvider    string // "mock", "ses" or "sendgrid"
	SendGridAPIKey   string
	EmailFromAddress string
	EmailFromName    string

	// Clinic details used in outbound email
	ClinicName  string
	ClinicPhone string

	// Reminder dispatch loop
	ReminderPollInterval time.Duration
	ReminderBatchSize    int

	// Slot generation
	DemoDoctorEnabled bool
	DemoDoctorName    string
	DemoSpecialty     string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		UsersTable:          getEnv("USERS_TABLE", "users"),
		AppointmentsTable:   getEnv("APPOINTMENTS_TABLE", "appointments"),
		QuestionnairesTable: getEnv("QUESTIONNAIRES_TABLE", "questionnaires"),
		RemindersTable:      getEnv("REMINDERS_TABLE", "reminders"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: getEnvAsDuration("ACCESS_TOKEN_TTL", 24*time.Hour),

		UseMockAgents: getEnvAsBool("USE_MOCK_AGENTS", true),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModelID:  getEnv("GEMINI_MODEL_ID", "gemini-2.5-flash"),
		BedrockModelID: getEnv("BEDROCK_MODEL_ID", ""),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "mock"))),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Aurora Health Clinic"),

		ClinicName:  getEnv("CLINIC_NAME", "Aurora Health Clinic"),
		ClinicPhone: getEnv("CLINIC_PHONE", "+1 (555) 014-8892"),

		ReminderPollInterval: getEnvAsDuration("REMINDER_POLL_INTERVAL", 60*time.Second),
		ReminderBatchSize:    getEnvAsInt("REMINDER_BATCH_SIZE", 50),

		DemoDoctorEnabled: getEnvAsBool("DEMO_DOCTOR_ENABLED", true),
		DemoDoctorName:    getEnv("DEMO_DOCTOR_NAME", "Dr. Sarah Smith"),
		DemoSpecialty:     getEnv("DEMO_DOCTOR_SPECIALTY", "Cardiologist"),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
