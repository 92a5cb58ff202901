package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential  = errors.New("missing login credentials")
	ErrCredentialNotFound = errors.New("credential not found")
	ErrCancelled          = errors.New("total test run cancelled")
)

type Field string

const (
	FieldCredentials Field = "login credentials"
	FieldHostPort    Field = "host:port"
	FieldProject     Field = "project folder"
	FieldTestSuite   Field = "test suite"
	FieldJCL         Field = "JCL"
)

type Rule string

const (
	RuleMissing     Rule = "missing"
	RuleFormat      Rule = "format"
	RuleMissingHost Rule = "missing-host"
	RuleMissingPort Rule = "missing-port"
	RuleInvalidPort Rule = "invalid-port"
	RuleSuiteSuffix Rule = "suite-suffix"
)

// FieldError reports a single field that failed validation.
type FieldError struct {
	Field Field
	Rule  Rule
	Value string
}

func (e *FieldError) Error() string {
	switch e.Rule {
	case RuleMissing:
		if e.Field == FieldHostPort {
			return "host:port must be specified"
		}
		return fmt.Sprintf("missing parameter: %s", e.Field)
	case RuleFormat:
		return fmt.Sprintf("host:port %q must be in the format host:port", e.Value)
	case RuleMissingHost:
		return fmt.Sprintf("host is missing from host:port %q", e.Value)
	case RuleMissingPort:
		return fmt.Sprintf("port is missing from host:port %q", e.Value)
	case RuleInvalidPort:
		return fmt.Sprintf("port in host:port %q must be numeric", e.Value)
	case RuleSuiteSuffix:
		return fmt.Sprintf("test suite %q must end with %s or %s", e.Value, TestSuiteExt, TestScenarioExt)
	default:
		return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
	}
}

// ToolResolutionError means the CLI install directory or script could not be
// located, or the scratch workspace could not be created.
type ToolResolutionError struct {
	Path string
	Err  error
}

func (e *ToolResolutionError) Error() string {
	return fmt.Sprintf("resolve total test cli %s: %v", e.Path, e.Err)
}

func (e *ToolResolutionError) Unwrap() error { return e.Err }

// LaunchError means the operating system refused to start the process.
type LaunchError struct {
	Executable string
	Err        error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("launch %s: %v", e.Executable, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExecutionError means the process ran and exited non-zero.
type ExecutionError struct {
	Executable string
	ExitCode   int
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s exited with exit value = %d", e.Executable, e.ExitCode)
}
