package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	TestSuiteExt    = ".testsuite"
	TestScenarioExt = ".testscenario"
)

type ConfigValidator struct{}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate checks cfg field by field and stops at the first failure. Each
// accepted value is echoed to sink; of the credential only the username is
// written.
func (v *ConfigValidator) Validate(ctx context.Context, cfg *RunConfiguration, creds CredentialResolver, sink io.Writer) (Credential, error) {
	if cfg.CredentialsID == "" || creds == nil {
		return Credential{}, ErrMissingCredential
	}
	cred, err := creds.Resolve(ctx, cfg.Context, cfg.CredentialsID)
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			return Credential{}, ErrMissingCredential
		}
		return Credential{}, fmt.Errorf("%w: %w", ErrMissingCredential, err)
	}
	fmt.Fprintf(sink, "Username = %s\n", cred.Username)

	if err := CheckHostPort(cfg.HostPort); err != nil {
		return Credential{}, err
	}
	host, port := SplitHostPort(cfg.HostPort)
	fmt.Fprintf(sink, "Host = %s\n", host)
	fmt.Fprintf(sink, "Port = %s\n", port)

	if err := CheckProjectFolder(cfg.ProjectFolder); err != nil {
		return Credential{}, err
	}
	fmt.Fprintf(sink, "Project = %s\n", cfg.ProjectFolder)

	if err := CheckTestSuite(cfg.TestSuite); err != nil {
		return Credential{}, err
	}
	fmt.Fprintf(sink, "Test suite = %s\n", cfg.TestSuite)

	if err := CheckJCL(cfg.JCL); err != nil {
		return Credential{}, err
	}
	fmt.Fprintf(sink, "JCL = %s\n", cfg.JCL)

	return cred, nil
}

func CheckCredentialsID(value string) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: FieldCredentials, Rule: RuleMissing}
	}
	return nil
}

// CheckHostPort accepts exactly "host:port" with a numeric port. Addresses
// containing further colons (IPv6) are rejected.
func CheckHostPort(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return &FieldError{Field: FieldHostPort, Rule: RuleMissing}
	}

	parts := splitColon(trimmed)
	if len(parts) != 2 {
		return &FieldError{Field: FieldHostPort, Rule: RuleFormat, Value: trimmed}
	}
	if strings.TrimSpace(parts[0]) == "" {
		return &FieldError{Field: FieldHostPort, Rule: RuleMissingHost, Value: trimmed}
	}

	port := strings.TrimSpace(parts[1])
	if port == "" {
		return &FieldError{Field: FieldHostPort, Rule: RuleMissingPort, Value: trimmed}
	}
	if !isNumeric(port) {
		return &FieldError{Field: FieldHostPort, Rule: RuleInvalidPort, Value: trimmed}
	}
	return nil
}

// SplitHostPort returns the trimmed host and port of a value that passed
// CheckHostPort.
func SplitHostPort(value string) (host, port string) {
	parts := splitColon(strings.TrimSpace(value))
	if len(parts) > 0 {
		host = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		port = strings.TrimSpace(parts[1])
	}
	return host, port
}

func CheckProjectFolder(value string) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: FieldProject, Rule: RuleMissing}
	}
	return nil
}

func CheckTestSuite(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return &FieldError{Field: FieldTestSuite, Rule: RuleMissing}
	}
	lc := strings.ToLower(trimmed)
	if !strings.HasSuffix(lc, TestSuiteExt) && !strings.HasSuffix(lc, TestScenarioExt) {
		return &FieldError{Field: FieldTestSuite, Rule: RuleSuiteSuffix, Value: value}
	}
	return nil
}

func CheckJCL(value string) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: FieldJCL, Rule: RuleMissing}
	}
	return nil
}

// splitColon splits on ':' and drops trailing empty segments, so "host:"
// yields a single part.
func splitColon(s string) []string {
	parts := strings.Split(s, ":")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
