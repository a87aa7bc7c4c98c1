// Package config implements the per-environment configuration lifecycle:
// generation with environment-specific defaults, validation (including
// production security rules), backup and restore, cross-component consistency
// checks, security scanning and backup retention cleanup.
//
// Documents are typed, schema-validated structures persisted as YAML with
// owner-only permissions. Environment variable overrides (RELEASEKIT_*) are
// consumed read-only and never written back to the document.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	ErrInvalidEnvironment = errors.New("invalid environment")
	ErrInvalidConfig      = errors.New("invalid config")
	ErrNotFound           = errors.New("config not found")
)

// Environment identifies a deployment environment a configuration document is
// scoped to.
type Environment string

const (
	EnvDev     Environment = "dev"
	EnvStaging Environment = "staging"
	EnvProd    Environment = "prod"
)

// Environments lists all valid environments.
func Environments() []Environment {
	return []Environment{EnvDev, EnvStaging, EnvProd}
}

func (e Environment) String() string { return string(e) }

// IsProductionClass reports whether destructive operations against this
// environment require the irreversible-operation guard.
func (e Environment) IsProductionClass() bool { return e == EnvProd }

// ParseEnvironment parses an environment name.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case EnvDev, EnvStaging, EnvProd:
		return Environment(s), nil
	default:
		return "", fmt.Errorf("environment %q: %w", s, ErrInvalidEnvironment)
	}
}

// AppConfig holds product-wide settings.
type AppConfig struct {
	Name     string `mapstructure:"name" yaml:"name"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// FrontendConfig holds the frontend component's settings.
type FrontendConfig struct {
	PublicURL string `mapstructure:"public_url" yaml:"public_url"` // URL the frontend is served at
	APIURL    string `mapstructure:"api_url" yaml:"api_url"`       // backend URL the frontend calls
}

// BackendConfig holds the backend component's settings.
type BackendConfig struct {
	Host      string `mapstructure:"host" yaml:"host"`
	Port      int    `mapstructure:"port" yaml:"port"`
	PublicURL string `mapstructure:"public_url" yaml:"public_url"` // URL the backend advertises
}

// ContractsConfig holds the on-chain component's settings.
type ContractsConfig struct {
	Network       string `mapstructure:"network" yaml:"network"`               // deploy target network: dev, test or main
	DeployAccount string `mapstructure:"deploy_account" yaml:"deploy_account"` // account the toolchain deploys from
}

// CredentialsConfig holds operator credentials.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type CredentialsConfig struct {
	AdminUser         string `mapstructure:"admin_user" yaml:"admin_user"`
	AdminPassword     string `mapstructure:"admin_password" yaml:"admin_password"` // Secret
	SessionTTLMinutes int    `mapstructure:"session_ttl_minutes" yaml:"session_ttl_minutes"`
}

// TLSConfig points at the certificate material required for production.
type TLSConfig struct {
	CertFile string `mapstructure:"cert_file" yaml:"cert_file"`
	KeyFile  string `mapstructure:"key_file" yaml:"key_file"`
}

// SecurityConfig holds environment security posture flags.
type SecurityConfig struct {
	HTTPSOnly      bool `mapstructure:"https_only" yaml:"https_only"`
	EncryptSecrets bool `mapstructure:"encrypt_secrets" yaml:"encrypt_secrets"`
}

// BackupPolicy bounds backup storage growth.
type BackupPolicy struct {
	RetentionDays int `mapstructure:"retention_days" yaml:"retention_days"`
}

// Document is the full configuration document for one environment.
type Document struct {
	Environment Environment       `mapstructure:"environment" yaml:"environment"`
	App         AppConfig         `mapstructure:"app" yaml:"app"`
	Frontend    FrontendConfig    `mapstructure:"frontend" yaml:"frontend"`
	Backend     BackendConfig     `mapstructure:"backend" yaml:"backend"`
	Contracts   ContractsConfig   `mapstructure:"contracts" yaml:"contracts"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	TLS         TLSConfig         `mapstructure:"tls" yaml:"tls"`
	Security    SecurityConfig    `mapstructure:"security" yaml:"security"`
	Backups     BackupPolicy      `mapstructure:"backups" yaml:"backups"`
}

// Defaults returns a full configuration document with environment-specific
// defaults. Dev favors convenience (plain HTTP, long-lived fixed credentials
// are avoided even here, but the password is predictable); prod enforces HTTPS,
// encrypted secrets and generated credentials.
func Defaults(env Environment) Document {
	doc := Document{
		Environment: env,
		App:         AppConfig{Name: "releasekit", LogLevel: "info"},
		Backups:     BackupPolicy{RetentionDays: 30},
	}

	switch env {
	case EnvProd:
		doc.App.LogLevel = "warn"
		doc.Frontend = FrontendConfig{
			PublicURL: "https://app.example.com",
			APIURL:    "https://api.example.com",
		}
		doc.Backend = BackendConfig{
			Host:      "0.0.0.0",
			Port:      8443,
			PublicURL: "https://api.example.com",
		}
		doc.Contracts = ContractsConfig{Network: "main", DeployAccount: "deployer-prod"}
		doc.Credentials = CredentialsConfig{
			AdminUser:         "ops-" + randomToken(4),
			AdminPassword:     randomToken(24),
			SessionTTLMinutes: 30,
		}
		doc.TLS = TLSConfig{
			CertFile: "/etc/releasekit/tls/server.crt",
			KeyFile:  "/etc/releasekit/tls/server.key",
		}
		doc.Security = SecurityConfig{HTTPSOnly: true, EncryptSecrets: true}
		doc.Backups.RetentionDays = 90

	case EnvStaging:
		doc.Frontend = FrontendConfig{
			PublicURL: "https://app.staging.example.com",
			APIURL:    "https://api.staging.example.com",
		}
		doc.Backend = BackendConfig{
			Host:      "0.0.0.0",
			Port:      8443,
			PublicURL: "https://api.staging.example.com",
		}
		doc.Contracts = ContractsConfig{Network: "test", DeployAccount: "deployer-staging"}
		doc.Credentials = CredentialsConfig{
			AdminUser:         "staging-admin",
			AdminPassword:     randomToken(16),
			SessionTTLMinutes: 60,
		}
		doc.Security = SecurityConfig{HTTPSOnly: true, EncryptSecrets: true}

	default: // dev
		doc.App.LogLevel = "debug"
		doc.Frontend = FrontendConfig{
			PublicURL: "http://localhost:3000",
			APIURL:    "http://localhost:8080",
		}
		doc.Backend = BackendConfig{
			Host:      "127.0.0.1",
			Port:      8080,
			PublicURL: "http://localhost:8080",
		}
		doc.Contracts = ContractsConfig{Network: "dev", DeployAccount: "deployer-dev"}
		doc.Credentials = CredentialsConfig{
			AdminUser:         "dev-admin",
			AdminPassword:     "dev-" + randomToken(8),
			SessionTTLMinutes: 480,
		}
		doc.Security = SecurityConfig{HTTPSOnly: false, EncryptSecrets: false}
		doc.Backups.RetentionDays = 7
	}

	return doc
}

// randomToken returns n random bytes hex-encoded. Generated credentials must
// never collide with the weak-default substrings the security scan rejects.
func randomToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand only fails when the platform entropy source is broken.
		panic(err)
	}

	return hex.EncodeToString(b)
}
