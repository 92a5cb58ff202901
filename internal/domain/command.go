package domain

import "strings"

// MaskedValue replaces sensitive arguments wherever a command line is shown.
const MaskedValue = "********"

// Arg is one element of an argument vector.
type Arg struct {
	Value     string
	Sensitive bool
}

// CommandInvocation is a single, fully escaped process launch. Args[0] is the
// executable path.
type CommandInvocation struct {
	// Name is the script file name, used in the exit summary.
	Name string
	Args []Arg
	Dir  string
	Env  []string
}

func (c *CommandInvocation) Program() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0].Value
}

// Argv returns the unmasked argument vector for exec.
func (c *CommandInvocation) Argv() []string {
	argv := make([]string, len(c.Args))
	for i, a := range c.Args {
		argv[i] = a.Value
	}
	return argv
}

// Masked renders the command line with sensitive values hidden.
func (c *CommandInvocation) Masked() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		if a.Sensitive {
			parts[i] = MaskedValue
			continue
		}
		parts[i] = a.Value
	}
	return strings.Join(parts, " ")
}
