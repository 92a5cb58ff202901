package domain

import "context"

// CredentialResolver looks up a credential by id within a context such as a
// job name. It returns ErrCredentialNotFound when nothing matches.
type CredentialResolver interface {
	Resolve(ctx context.Context, contextRef, id string) (Credential, error)
}

// Target is the machine the Total Test CLI is launched on.
type Target interface {
	Platform() Platform
	MkdirAll(path string) error
	Stat(path string) error
}
