package reconcile

import (
	"strings"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/google/uuid"
)

const (
	// DefaultTokenLength is the number of hex characters in a generated token
	DefaultTokenLength = 12
	// DefaultMaxAttempts bounds token generation retries
	DefaultMaxAttempts = 32
)

// TokenAllocator produces a file name prefix that is not a prefix of any
// name it is checked against.
type TokenAllocator struct {
	Generate    func() string
	MaxAttempts int
}

// NewTokenAllocator returns an allocator generating uuid-derived tokens
func NewTokenAllocator() *TokenAllocator {
	return &TokenAllocator{
		Generate:    randomToken,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Allocate returns a token that no name in names starts with. The
// comparison is case-sensitive.
func (a *TokenAllocator) Allocate(names []string) (string, error) {
	generate := a.Generate
	if generate == nil {
		generate = randomToken
	}
	attempts := a.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	for i := 0; i < attempts; i++ {
		token := generate()
		if token == "" || strings.ContainsAny(token, `/\`) {
			continue
		}
		if !prefixesAny(token, names) {
			return token, nil
		}
	}
	return "", errors.Newf(errors.ErrInternal, "failed to allocate a unique rename token after %d attempts", attempts).
		WithDetail("attempts", attempts)
}

func prefixesAny(token string, names []string) bool {
	for _, name := range names {
		if strings.HasPrefix(name, token) {
			return true
		}
	}
	return false
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:DefaultTokenLength]
}
