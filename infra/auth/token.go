package auth

import (
	"fmt"
	"os"
	"strings"
)

// TokenProvider supplies an access token for API authentication.
type TokenProvider interface {
	AccessToken() (string, error)
}

// FileTokenProvider reads a bearer token from a file on disk.
type FileTokenProvider struct {
	path string
}

// NewFileTokenProvider creates a TokenProvider that reads from the given file path.
func NewFileTokenProvider(path string) *FileTokenProvider {
	return &FileTokenProvider{path: path}
}

// AccessToken reads and returns the token, trimming whitespace.
// The file is read on every call so a rotated token is picked up.
func (f *FileTokenProvider) AccessToken() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("reading token from %s: %w", f.path, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", f.path)
	}

	return token, nil
}

// EnvTokenProvider reads a bearer token from an environment variable.
type EnvTokenProvider struct {
	name string
}

func NewEnvTokenProvider(name string) *EnvTokenProvider {
	return &EnvTokenProvider{name: name}
}

func (e *EnvTokenProvider) AccessToken() (string, error) {
	token := strings.TrimSpace(os.Getenv(e.name))
	if token == "" {
		return "", fmt.Errorf("%s is empty", e.name)
	}
	return token, nil
}

// Chain tries each provider in order and returns the first token found.
type Chain []TokenProvider

func (c Chain) AccessToken() (string, error) {
	var errs []string
	for _, p := range c {
		tok, err := p.AccessToken()
		if err == nil {
			return tok, nil
		}
		errs = append(errs, err.Error())
	}
	if len(errs) == 0 {
		return "", fmt.Errorf("no token provider configured")
	}
	return "", fmt.Errorf("no access token: %s", strings.Join(errs, "; "))
}
