package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Environment    string   `mapstructure:"ENVIRONMENT"`
	Version        string   `mapstructure:"VERSION"`
	BaseURL        string   `mapstructure:"BASE_URL"`
	TrustedOrigins []string `mapstructure:"TRUSTED_ORIGINS"`
	TLSCertFile    string   `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile     string   `mapstructure:"TLS_KEY_FILE"`
	UploadDir      string   `mapstructure:"UPLOAD_DIR"`

	DB         DBConfig         `mapstructure:",squash"`
	Mail       MailConfig       `mapstructure:",squash"`
	RabbitMQ   RabbitMQConfig   `mapstructure:",squash"`
	JWT        JWTConfig        `mapstructure:",squash"`
	Cloudinary CloudinaryConfig `mapstructure:",squash"`
	Limiter    LimiterConfig    `mapstructure:",squash"`
}

type DBConfig struct {
	Host         string        `mapstructure:"POSTGRES_HOST"`
	Port         string        `mapstructure:"POSTGRES_PORT"`
	User         string        `mapstructure:"POSTGRES_USER"`
	Password     string        `mapstructure:"POSTGRES_PASSWORD"`
	Name         string        `mapstructure:"POSTGRES_DB"`
	MaxOpenConns int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	MaxIdleTime  time.Duration `mapstructure:"DB_MAX_IDLE_TIME"`
	AutoMigrate  bool          `mapstructure:"DB_AUTO_MIGRATE"`
	Migrations   string        `mapstructure:"DB_MIGRATIONS"`
}

type MailConfig struct {
	Host     string `mapstructure:"MAIL_HOST"`
	Port     int    `mapstructure:"MAIL_PORT"`
	User     string `mapstructure:"MAIL_USER"`
	Password string `mapstructure:"MAIL_PASSWORD"`
	Sender   string `mapstructure:"MAIL_SENDER"`
}

type RabbitMQConfig struct {
	Host     string `mapstructure:"RABBITMQ_HOST"`
	Port     string `mapstructure:"RABBITMQ_PORT"`
	User     string `mapstructure:"RABBITMQ_USER"`
	Password string `mapstructure:"RABBITMQ_PASSWORD"`
}

type JWTConfig struct {
	AccessSecret       string        `mapstructure:"ACCESS_TOKEN_SECRET"`
	AccessExpiry       time.Duration `mapstructure:"ACCESS_TOKEN_EXPIRY"`
	RefreshSecret      string        `mapstructure:"REFRESH_TOKEN_SECRET"`
	RefreshExpiry      time.Duration `mapstructure:"REFRESH_TOKEN_EXPIRY"`
	VerificationSecret string        `mapstructure:"VERIFICATION_TOKEN_SECRET"`
	VerificationExpiry time.Duration `mapstructure:"VERIFICATION_TOKEN_EXPIRY"`
	OTPExpiry          time.Duration `mapstructure:"OTP_EXPIRY"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	APISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	Folder    string `mapstructure:"CLOUDINARY_FOLDER"`
}

type LimiterConfig struct {
	Enabled bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RPS     float64 `mapstructure:"RATE_LIMIT_RPS"`
	Burst   int     `mapstructure:"RATE_LIMIT_BURST"`
}

var defaults = map[string]any{
	"PORT":                      ":8080",
	"ENVIRONMENT":               "development",
	"VERSION":                   "1.0.0",
	"BASE_URL":                  "http://localhost:8080",
	"TRUSTED_ORIGINS":           "",
	"TLS_CERT_FILE":             "",
	"TLS_KEY_FILE":              "",
	"UPLOAD_DIR":                "./public/temp",
	"POSTGRES_HOST":             "localhost",
	"POSTGRES_PORT":             "5432",
	"POSTGRES_USER":             "postgres",
	"POSTGRES_DB":               "blogsphere",
	"DB_MAX_OPEN_CONNS":         25,
	"DB_MAX_IDLE_CONNS":         25,
	"DB_MAX_IDLE_TIME":          "15m",
	"DB_AUTO_MIGRATE":           true,
	"DB_MIGRATIONS":             "file://migrations",
	"MAIL_HOST":                 "localhost",
	"MAIL_PORT":                 1025,
	"MAIL_USER":                 "",
	"MAIL_SENDER":               "BlogSphere <no-reply@blogsphere.dev>",
	"RABBITMQ_HOST":             "localhost",
	"RABBITMQ_PORT":             "5672",
	"RABBITMQ_USER":             "guest",
	"ACCESS_TOKEN_EXPIRY":       "15m",
	"REFRESH_TOKEN_EXPIRY":      "240h",
	"VERIFICATION_TOKEN_EXPIRY": "24h",
	"OTP_EXPIRY":                "10m",
	"CLOUDINARY_FOLDER":         "BlogApp",
	"RATE_LIMIT_ENABLED":        true,
	"RATE_LIMIT_RPS":            2,
	"RATE_LIMIT_BURST":          4,
}

// secrets have no default but can still come from the process environment.
var secrets = []string{
	"POSTGRES_PASSWORD",
	"MAIL_PASSWORD",
	"RABBITMQ_PASSWORD",
	"ACCESS_TOKEN_SECRET",
	"REFRESH_TOKEN_SECRET",
	"VERIFICATION_TOKEN_SECRET",
	"CLOUDINARY_CLOUD_NAME",
	"CLOUDINARY_API_KEY",
	"CLOUDINARY_API_SECRET",
}

// loadConfig reads the env file at path, lets the process environment override
// it and validates the result. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	for _, key := range secrets {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	var errs []error

	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET must be set"))
	}

	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("REFRESH_TOKEN_SECRET must be set"))
	}

	if c.JWT.VerificationSecret == "" {
		errs = append(errs, errors.New("VERIFICATION_TOKEN_SECRET must be set"))
	}

	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ"))
	}

	if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
		errs = append(errs, errors.New("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET must be set"))
	}

	if c.Environment == "production" && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set in production"))
	}

	return errors.Join(errs...)
}
