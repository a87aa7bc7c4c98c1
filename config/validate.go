package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mintworks/releasekit/internal/fileutils"
	"github.com/mintworks/releasekit/registry"
)

// weakSecretSubstrings are credential fragments that indicate a default or
// guessable secret. Any secret field containing one of these fails production
// validation.
var weakSecretSubstrings = []string{
	"password", "changeme", "secret", "admin", "default", "12345", "letmein", "qwerty",
}

// ValidationResult is the structured outcome of validating a configuration
// document. Errors block a release; warnings do not.
type ValidationResult struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Valid reports whether the document passed with no errors.
func (r ValidationResult) Valid() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Validate checks required-key presence, value shapes and environment-specific
// security rules for the environment's document. It never mutates and never
// fails for a findable-but-invalid document; it only returns an error when the
// document is missing entirely or unreadable.
func (s *Store) Validate(env Environment) (ValidationResult, error) {
	doc, err := s.Load(env)
	if err != nil {
		return ValidationResult{}, err
	}

	var res ValidationResult

	if doc.Environment != env {
		res.errorf("environment: document declares %q, expected %q", doc.Environment, env)
	}

	// Required keys and value shapes.
	required := []struct {
		key   string
		value string
	}{
		{"app.name", doc.App.Name},
		{"frontend.public_url", doc.Frontend.PublicURL},
		{"frontend.api_url", doc.Frontend.APIURL},
		{"backend.host", doc.Backend.Host},
		{"backend.public_url", doc.Backend.PublicURL},
		{"contracts.network", doc.Contracts.Network},
		{"contracts.deploy_account", doc.Contracts.DeployAccount},
		{"credentials.admin_user", doc.Credentials.AdminUser},
		{"credentials.admin_password", doc.Credentials.AdminPassword},
	}
	for _, req := range required {
		if strings.TrimSpace(req.value) == "" {
			res.errorf("%s: required key is missing or empty", req.key)
		}
	}

	if doc.Backend.Port < 1 || doc.Backend.Port > 65535 {
		res.errorf("backend.port: %d is not a valid port", doc.Backend.Port)
	}
	if doc.Credentials.SessionTTLMinutes <= 0 {
		res.errorf("credentials.session_ttl_minutes: must be positive, got %d", doc.Credentials.SessionTTLMinutes)
	}
	if doc.Backups.RetentionDays <= 0 {
		res.errorf("backups.retention_days: must be positive, got %d", doc.Backups.RetentionDays)
	}
	if doc.Contracts.Network != "" {
		if _, err := registry.ParseNetwork(doc.Contracts.Network); err != nil {
			res.errorf("contracts.network: %q is not a known network", doc.Contracts.Network)
		}
	}

	for key, raw := range urlFields(doc) {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			res.errorf("%s: %q is not a valid http(s) URL", key, raw)
		}
	}

	if env == EnvProd {
		s.validateProd(doc, &res)
	} else if env == EnvStaging && !doc.Security.HTTPSOnly {
		res.warnf("security.https_only: staging should enforce HTTPS")
	}

	return res, nil
}

// validateProd applies the production-only security rules: HTTPS-only URLs,
// encrypted secrets, generated (not default) credentials, readable TLS
// material and owner-only file permissions.
func (s *Store) validateProd(doc Document, res *ValidationResult) {
	if !doc.Security.HTTPSOnly {
		res.errorf("security.https_only: must be enabled for prod")
	}
	if !doc.Security.EncryptSecrets {
		res.errorf("security.encrypt_secrets: must be enabled for prod")
	}

	for key, raw := range urlFields(doc) {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err == nil && u.Scheme != "https" {
			res.errorf("%s: prod requires HTTPS, got %q", key, raw)
		}
	}

	for _, weak := range weakSecretSubstrings {
		if strings.Contains(strings.ToLower(doc.Credentials.AdminPassword), weak) {
			res.errorf("credentials.admin_password: contains weak substring %q", weak)
		}
	}
	if len(doc.Credentials.AdminPassword) > 0 && len(doc.Credentials.AdminPassword) < 16 {
		res.errorf("credentials.admin_password: too short for prod (%d chars, need 16)",
			len(doc.Credentials.AdminPassword))
	}

	for key, path := range map[string]string{
		"tls.cert_file": doc.TLS.CertFile,
		"tls.key_file":  doc.TLS.KeyFile,
	} {
		if path == "" {
			res.errorf("%s: required for prod", key)
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			res.errorf("%s: %q is not readable: %v", key, path, err)
			continue
		}
		f.Close()
	}

	if ok, err := fileutils.IsOwnerOnly(s.Path(doc.Environment)); err == nil && !ok {
		res.errorf("config file permissions: must be owner-only (0600)")
	}
}

// urlFields returns the URL-typed fields of doc keyed by their document path.
func urlFields(doc Document) map[string]string {
	return map[string]string{
		"frontend.public_url": doc.Frontend.PublicURL,
		"frontend.api_url":    doc.Frontend.APIURL,
		"backend.public_url":  doc.Backend.PublicURL,
	}
}

// ConsistencyCheck cross-validates values that must agree between components
// sharing the environment. Issues are warnings, not hard failures.
func (s *Store) ConsistencyCheck(env Environment) ([]string, error) {
	doc, err := s.Load(env)
	if err != nil {
		return nil, err
	}

	var issues []string

	// The backend URL the frontend calls must be the URL the backend
	// advertises.
	if doc.Frontend.APIURL != "" && doc.Backend.PublicURL != "" &&
		doc.Frontend.APIURL != doc.Backend.PublicURL {
		issues = append(issues, fmt.Sprintf(
			"frontend.api_url %q does not match backend.public_url %q",
			doc.Frontend.APIURL, doc.Backend.PublicURL))
	}

	// The port the backend listens on must match the port it advertises.
	if u, err := url.Parse(doc.Backend.PublicURL); err == nil && u.Port() != "" {
		if advertised, err := strconv.Atoi(u.Port()); err == nil && advertised != doc.Backend.Port {
			issues = append(issues, fmt.Sprintf(
				"backend.public_url advertises port %d but backend.port is %d",
				advertised, doc.Backend.Port))
		}
	}

	// Each environment class deploys contracts to its expected network.
	expected := map[Environment]string{EnvDev: "dev", EnvStaging: "test", EnvProd: "main"}
	if want := expected[env]; doc.Contracts.Network != "" && doc.Contracts.Network != want {
		issues = append(issues, fmt.Sprintf(
			"contracts.network is %q; %s environments deploy to %q",
			doc.Contracts.Network, env, want))
	}

	return issues, nil
}

// SecurityScan pattern-matches for weak or default credential substrings and
// checks file permission bits. It returns found issues without mutating.
func (s *Store) SecurityScan(env Environment) ([]string, error) {
	doc, err := s.Load(env)
	if err != nil {
		return nil, err
	}

	var issues []string

	for field, value := range map[string]string{
		"credentials.admin_user":     doc.Credentials.AdminUser,
		"credentials.admin_password": doc.Credentials.AdminPassword,
	} {
		lowered := strings.ToLower(value)
		for _, weak := range weakSecretSubstrings {
			if strings.Contains(lowered, weak) {
				issues = append(issues, fmt.Sprintf("%s contains weak substring %q", field, weak))
			}
		}
	}

	if ok, err := fileutils.IsOwnerOnly(s.Path(env)); err == nil && !ok {
		issues = append(issues, "config file is readable by group or world")
	}

	if !doc.Security.EncryptSecrets {
		issues = append(issues, "secrets are stored unencrypted (security.encrypt_secrets disabled)")
	}

	return issues, nil
}
