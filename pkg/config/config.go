package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Vision    VisionConfig
	Extractor ExtractorConfig
	Budget    BudgetConfig
	Logger    LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey  string
	Expiration time.Duration
	RefreshExp time.Duration
}

// StorageConfig configures the S3 bucket that holds receipt images.
type StorageConfig struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// VisionConfig configures the text-recognition provider.
type VisionConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// ExtractorConfig configures the structured-extraction provider.
// Provider is "openai" or "gigachat".
type ExtractorConfig struct {
	Provider           string
	BaseURL            string
	APIKey             string
	Model              string
	Timeout            time.Duration
	GigaChatScope      string
	InsecureSkipVerify bool
}

// BudgetConfig configures the monthly budget alert mailer.
type BudgetConfig struct {
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	From     string
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// If no .env file was found, environment variables are used directly
	// (useful for Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	refreshExp, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168"))
	visionTimeout, _ := strconv.Atoi(getEnv("VISION_TIMEOUT_SECONDS", "30"))
	extractorTimeout, _ := strconv.Atoi(getEnv("EXTRACTOR_TIMEOUT_SECONDS", "45"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true"

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "spendlens"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", "your-secret-key-change-in-production"),
			Expiration: time.Duration(jwtExp) * time.Hour,
			RefreshExp: time.Duration(refreshExp) * time.Hour,
		},
		Storage: StorageConfig{
			Bucket:    getEnv("AWS_S3_BUCKET", "spendlens-receipts"),
			Region:    getEnv("AWS_S3_REGION", "eu-central-1"),
			AccessKey: getEnv("AWS_ACCESS_KEY", ""),
			SecretKey: getEnv("AWS_SECRET_KEY", ""),
		},
		Vision: VisionConfig{
			BaseURL: getEnv("VISION_BASE_URL", "https://vision.googleapis.com/v1"),
			APIKey:  getEnv("VISION_API_KEY", ""),
			Timeout: time.Duration(visionTimeout) * time.Second,
		},
		Extractor: ExtractorConfig{
			Provider:           getEnv("EXTRACTOR_PROVIDER", "openai"),
			BaseURL:            getEnv("EXTRACTOR_BASE_URL", "https://api.openai.com/v1"),
			APIKey:             getEnv("EXTRACTOR_API_KEY", ""),
			Model:              getEnv("EXTRACTOR_MODEL", "gpt-4o"),
			Timeout:            time.Duration(extractorTimeout) * time.Second,
			GigaChatScope:      getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			InsecureSkipVerify: insecureSkipVerify,
		},
		Budget: BudgetConfig{
			SMTPHost: getEnv("SMTP_HOST", ""),
			SMTPPort: smtpPort,
			SMTPUser: getEnv("SMTP_USER", ""),
			SMTPPass: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("BUDGET_ALERT_FROM", "alerts@spendlens.app"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
