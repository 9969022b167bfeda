package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL    string
	HTTPListenAddr string
	LogLevel       string
	ServiceName    string
	MigrationsDir  string

	// Outbound notification transport.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	// OperatorBCC is blind-copied on every notification so operations staff
	// keep a record of what vendors were told. Empty disables the copy.
	OperatorBCC string

	// Access-list export to the proxy configuration repository.
	ExportRepoDir        string
	ExportRemoteURL      string
	ExportFile           string
	ExportSSHKeyPath     string
	ExportCommitterName  string
	ExportCommitterEmail string
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		HTTPListenAddr: getEnv("HTTP_LISTEN_ADDR", ":8090"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ServiceName:    getEnv("SERVICE_NAME", "ipregister"),
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", "ipregister@minitex.org"),
		OperatorBCC:  getEnv("OPERATOR_BCC", ""),

		ExportRepoDir:        getEnv("EXPORT_REPO_DIR", ""),
		ExportRemoteURL:      getEnv("EXPORT_REMOTE_URL", ""),
		ExportFile:           getEnv("EXPORT_FILE", "ipaddresses.txt"),
		ExportSSHKeyPath:     getEnv("EXPORT_SSH_KEY_PATH", ""),
		ExportCommitterName:  getEnv("EXPORT_COMMITTER_NAME", "ipregister"),
		ExportCommitterEmail: getEnv("EXPORT_COMMITTER_EMAIL", "ipregister@minitex.org"),
	}

	return cfg, nil
}

// Validate rejects configurations that would only fail later at connect or
// dispatch time. Called once at startup, before anything opens a connection.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MailFrom == "" {
		return fmt.Errorf("MAIL_FROM is required")
	}
	if c.ExportRemoteURL != "" && c.ExportRepoDir == "" {
		return fmt.Errorf("EXPORT_REPO_DIR is required when EXPORT_REMOTE_URL is set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
