package clientcli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter formats results for output.
type Formatter interface {
	FormatResult(w io.Writer, result *CallResult) error
	FormatLogin(w io.Writer, result *LoginResult, profile string) error
	FormatError(w io.Writer, err error) error
	FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error
	FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error
}

// NewFormatter returns the appropriate formatter based on flags.
func NewFormatter(jsonOutput, quiet bool) Formatter {
	if jsonOutput {
		return &JSONFormatter{}
	}
	return &HumanFormatter{Quiet: quiet}
}

// HumanFormatter outputs human-readable text.
type HumanFormatter struct {
	Quiet bool
}

// FormatResult pretty-prints the returned JSON value. Quiet prints it compact.
func (f *HumanFormatter) FormatResult(w io.Writer, result *CallResult) error {
	var buf bytes.Buffer
	if f.Quiet {
		if err := json.Compact(&buf, result.Body); err != nil {
			return fmt.Errorf("format result: %w", err)
		}
	} else {
		if err := json.Indent(&buf, result.Body, "", "  "); err != nil {
			return fmt.Errorf("format result: %w", err)
		}
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

// FormatLogin reports a successful login.
func (f *HumanFormatter) FormatLogin(w io.Writer, result *LoginResult, profile string) error {
	if f.Quiet {
		_, _ = fmt.Fprintln(w, result.Token)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Logged in as %s", result.User)
	if profile != "" {
		_, _ = fmt.Fprintf(w, " (profile '%s')", profile)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "  Token: %s\n", maskSecret(result.Token, false))
	return nil
}

// FormatError formats an error as human-readable text.
func (f *HumanFormatter) FormatError(w io.Writer, err error) error {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	return nil
}

// FormatProfileList formats a list of profiles as human-readable text.
func (f *HumanFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	// Calculate column widths
	maxNameLen := 4     // "NAME"
	maxEndpointLen := 8 // "ENDPOINT"
	maxUserLen := 4     // "USER"
	for i := range profiles {
		maxNameLen = max(maxNameLen, len(profiles[i].Name))
		maxEndpointLen = max(maxEndpointLen, len(profiles[i].Endpoint))
		maxUserLen = max(maxUserLen, len(profiles[i].User))
	}
	maxNameLen = min(maxNameLen, 20)
	maxEndpointLen = min(maxEndpointLen, 50)
	maxUserLen = min(maxUserLen, 30)

	_, _ = fmt.Fprintf(w, "  %-*s  %-*s  %-*s  %s\n", maxNameLen, "NAME", maxEndpointLen, "ENDPOINT", maxUserLen, "USER", "TOKEN")
	_, _ = fmt.Fprintf(w, "  %s  %s  %s  %s\n", strings.Repeat("-", maxNameLen), strings.Repeat("-", maxEndpointLen),
		strings.Repeat("-", maxUserLen), strings.Repeat("-", 20))

	for i := range profiles {
		p := &profiles[i]
		marker := " "
		if p.Name == defaultName {
			marker = "*"
		}

		_, _ = fmt.Fprintf(w, "%s %-*s  %-*s  %-*s  %s\n", marker,
			maxNameLen, clip(p.Name, maxNameLen),
			maxEndpointLen, clip(p.Endpoint, maxEndpointLen),
			maxUserLen, clip(p.User, maxUserLen),
			maskSecret(p.Token, showSecrets))
	}

	return nil
}

// FormatProfileShow formats a single profile as human-readable text.
func (f *HumanFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	_, _ = fmt.Fprintf(w, "Name:     %s", profile.Name)
	if isDefault {
		_, _ = fmt.Fprintf(w, " (default)")
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "Endpoint: %s\n", profile.Endpoint)
	_, _ = fmt.Fprintf(w, "User:     %s\n", orNotSet(profile.User))
	_, _ = fmt.Fprintf(w, "Token:    %s\n", maskSecret(profile.Token, showSecrets))
	return nil
}

// JSONFormatter outputs JSON.
type JSONFormatter struct{}

// FormatResult formats a call result as JSON, including method, path and status.
func (f *JSONFormatter) FormatResult(w io.Writer, result *CallResult) error {
	return writeJSON(w, result)
}

// FormatLogin formats a login result as JSON.
func (f *JSONFormatter) FormatLogin(w io.Writer, result *LoginResult, profile string) error {
	output := struct {
		*LoginResult
		Profile string `json:"profile,omitempty"`
	}{
		LoginResult: result,
		Profile:     profile,
	}
	return writeJSON(w, output)
}

// FormatError formats an error as JSON.
func (f *JSONFormatter) FormatError(w io.Writer, err error) error {
	output := struct {
		Error string `json:"error"`
	}{
		Error: err.Error(),
	}
	return writeJSON(w, output)
}

// FormatProfileList formats a list of profiles as JSON.
func (f *JSONFormatter) FormatProfileList(w io.Writer, profiles []Profile, defaultName string, showSecrets bool) error {
	type jsonProfile struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		User     string `json:"user,omitempty"`
		Token    string `json:"token,omitempty"`
		Default  bool   `json:"default,omitempty"`
	}

	output := struct {
		Profiles []jsonProfile `json:"profiles"`
	}{
		Profiles: make([]jsonProfile, len(profiles)),
	}

	for i := range profiles {
		p := &profiles[i]
		output.Profiles[i] = jsonProfile{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			User:     p.User,
			Token:    maskSecret(p.Token, showSecrets),
			Default:  p.Name == defaultName,
		}
	}

	return writeJSON(w, output)
}

// FormatProfileShow formats a single profile as JSON.
func (f *JSONFormatter) FormatProfileShow(w io.Writer, profile Profile, isDefault, showSecrets bool) error {
	output := struct {
		Name     string `json:"name"`
		Endpoint string `json:"endpoint"`
		User     string `json:"user"`
		Token    string `json:"token"`
		Default  bool   `json:"default"`
	}{
		Name:     profile.Name,
		Endpoint: profile.Endpoint,
		User:     profile.User,
		Token:    maskSecret(profile.Token, showSecrets),
		Default:  isDefault,
	}

	return writeJSON(w, output)
}

// writeJSON writes a value as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

// maskSecret masks a secret string, showing only first 4 and last 4 characters.
// If showSecrets is true, returns the original value.
// If the secret is too short, returns all asterisks.
func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
