package infra

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/msaeedsaeedi/ttrun/internal/domain"
)

type credentialFile struct {
	Credentials []credentialEntry `yaml:"credentials"`
}

type credentialEntry struct {
	ID          string   `yaml:"id"`
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
	Description string   `yaml:"description,omitempty"`
	Scopes      []string `yaml:"scopes,omitempty"`
}

func (e credentialEntry) appliesTo(contextRef string) bool {
	if len(e.Scopes) == 0 {
		return true
	}
	for _, s := range e.Scopes {
		if s == "*" || s == contextRef {
			return true
		}
	}
	return false
}

func (e credentialEntry) credential() domain.Credential {
	return domain.Credential{
		ID:          e.ID,
		Username:    e.Username,
		Password:    e.Password,
		Description: e.Description,
	}
}

// CredentialStore reads username/password credentials from a YAML file:
//
//	credentials:
//	  - id: tso
//	    username: alice
//	    password: secret
//	    description: test LPAR
//	    scopes: [nightly-regression]
//
// An entry without scopes applies to every context. The file is read on
// every call.
type CredentialStore struct {
	path string
}

var _ domain.CredentialResolver = (*CredentialStore)(nil)

func NewCredentialStore(path string) *CredentialStore {
	return &CredentialStore{path: path}
}

func (s *CredentialStore) load() ([]credentialEntry, error) {
	if s.path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	var f credentialFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse credentials file %s: %w", s.path, err)
	}
	return f.Credentials, nil
}

func (s *CredentialStore) Resolve(_ context.Context, contextRef, id string) (domain.Credential, error) {
	entries, err := s.load()
	if err != nil {
		return domain.Credential{}, err
	}
	for _, e := range entries {
		if e.ID == id && e.appliesTo(contextRef) {
			return e.credential(), nil
		}
	}
	return domain.Credential{}, domain.ErrCredentialNotFound
}

// List returns the credentials usable from contextRef in file order.
func (s *CredentialStore) List(_ context.Context, contextRef string) ([]domain.Credential, error) {
	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	creds := make([]domain.Credential, 0, len(entries))
	for _, e := range entries {
		if e.appliesTo(contextRef) {
			creds = append(creds, e.credential())
		}
	}
	return creds, nil
}

// EnvResolver resolves credential id "tso" from TTRUN_CREDENTIALS_TSO_USERNAME
// and TTRUN_CREDENTIALS_TSO_PASSWORD. The context is ignored.
type EnvResolver struct {
	lookup func(string) (string, bool)
}

var _ domain.CredentialResolver = (*EnvResolver)(nil)

func NewEnvResolver() *EnvResolver {
	return &EnvResolver{lookup: os.LookupEnv}
}

func envCredentialKey(id, suffix string) string {
	var sb strings.Builder
	sb.WriteString("TTRUN_CREDENTIALS_")
	for _, r := range strings.ToUpper(id) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	sb.WriteString("_" + suffix)
	return sb.String()
}

func (r *EnvResolver) Resolve(_ context.Context, _, id string) (domain.Credential, error) {
	user, ok := r.lookup(envCredentialKey(id, "USERNAME"))
	if !ok || user == "" {
		return domain.Credential{}, domain.ErrCredentialNotFound
	}
	pw, _ := r.lookup(envCredentialKey(id, "PASSWORD"))
	return domain.Credential{ID: id, Username: user, Password: pw}, nil
}

// ChainResolver asks each resolver in turn and returns the first match.
type ChainResolver []domain.CredentialResolver

func (c ChainResolver) Resolve(ctx context.Context, contextRef, id string) (domain.Credential, error) {
	for _, r := range c {
		cred, err := r.Resolve(ctx, contextRef, id)
		if err == nil {
			return cred, nil
		}
		if !errors.Is(err, domain.ErrCredentialNotFound) {
			return domain.Credential{}, err
		}
	}
	return domain.Credential{}, domain.ErrCredentialNotFound
}
