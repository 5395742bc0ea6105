// Package auth turns the configured credential source into an oauth2.TokenSource
// so the API client can attach a bearer token to every request.
package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/samsriram712/alex/internal/config"
)

// ErrNoCredentials is returned when a source yields an empty token.
var ErrNoCredentials = errors.New("no bearer credential available")

const commandTimeout = 10 * time.Second

// NewTokenSource returns nil when no credential source is configured; the
// client then sends requests without an Authorization header.
func NewTokenSource(cfg config.AuthConfig, ttl time.Duration) oauth2.TokenSource {
	switch {
	case cfg.Token != "":
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
	case cfg.TokenFile != "":
		return &fileSource{path: expandHome(cfg.TokenFile)}
	case cfg.TokenCommand != "":
		src := &commandSource{command: cfg.TokenCommand, ttl: ttl}
		if ttl > 0 {
			return oauth2.ReuseTokenSource(nil, src)
		}
		return src
	case cfg.TokenEnv != "":
		return &envSource{name: cfg.TokenEnv}
	}
	return nil
}

type envSource struct {
	name string
}

func (s *envSource) Token() (*oauth2.Token, error) {
	v := strings.TrimSpace(os.Getenv(s.name))
	if v == "" {
		return nil, fmt.Errorf("%w: $%s is empty", ErrNoCredentials, s.name)
	}
	return bearer(v), nil
}

// fileSource re-reads the file on every call so an external refresher can rotate it.
type fileSource struct {
	path string
}

func (s *fileSource) Token() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, os.ErrPermission) {
		return nil, fmt.Errorf("%w: token file: %w", ErrNoCredentials, err)
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoCredentials, s.path)
	}
	return bearer(v), nil
}

// commandSource runs a helper (for example an identity provider CLI) and uses
// its trimmed stdout as the token.
type commandSource struct {
	command string
	ttl     time.Duration
}

func (s *commandSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", s.command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", s.command)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("token command failed: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("token command failed: %w", err)
	}
	v := strings.TrimSpace(string(out))
	if v == "" {
		return nil, fmt.Errorf("%w: token command printed nothing", ErrNoCredentials)
	}
	tok := bearer(v)
	if s.ttl > 0 {
		tok.Expiry = time.Now().Add(s.ttl)
	}
	return tok, nil
}

func bearer(v string) *oauth2.Token {
	v = strings.TrimPrefix(v, "Bearer ")
	return &oauth2.Token{AccessToken: v, TokenType: "Bearer"}
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return home + p[1:]
}
