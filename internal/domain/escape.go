package domain

import (
	"slices"
	"strings"
)

const batchSpecials = " \t&|<>()^!\""

// EscapeForScript quotes value for the shell family that will read it.
//
// Unix: values made only of [A-Za-z0-9_@%+=:,./-] pass through, anything
// else is wrapped in single quotes with embedded quotes written as '\''.
//
// Windows batch: '%' is always doubled. Values containing whitespace or one
// of &|<>()^!" are wrapped in double quotes with embedded quotes doubled.
func EscapeForScript(value string, family OSFamily) string {
	if family == OSWindows {
		return escapeBatch(value)
	}
	return escapePOSIX(value)
}

func escapePOSIX(value string) string {
	if value == "" {
		return "''"
	}
	if strings.IndexFunc(value, func(r rune) bool { return !posixSafe(r) }) < 0 {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}

func posixSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("_@%+=:,./-", r)
}

func escapeBatch(value string) string {
	if value == "" {
		return `""`
	}
	escaped := strings.ReplaceAll(value, "%", "%%")
	if !strings.ContainsAny(escaped, batchSpecials) {
		return escaped
	}
	return `"` + strings.ReplaceAll(escaped, `"`, `""`) + `"`
}

// SecretForms returns every spelling of secret that can show up once it has
// been escaped for family and echoed back by the script, longest first.
func SecretForms(secret string, family OSFamily) []string {
	if secret == "" {
		return nil
	}
	forms := []string{secret}
	if family == OSWindows {
		forms = append(forms, strings.ReplaceAll(strings.ReplaceAll(secret, "%", "%%"), `"`, `""`))
	} else {
		forms = append(forms, strings.ReplaceAll(secret, "'", `'\''`))
	}
	slices.SortFunc(forms, func(a, b string) int { return len(b) - len(a) })
	return slices.Compact(forms)
}
