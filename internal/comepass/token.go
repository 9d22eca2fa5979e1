package comepass

import (
	"context"
	"errors"
	"sync"
	"time"
)

// RefreshMargin is how long before expiry a cached token stops being reused.
const RefreshMargin = 5 * time.Minute

var ErrNoToken = errors.New("no cached token")

type Token struct {
	AccessToken string    `json:"access_token"`
	PlaceCode   string    `json:"p_code"`
	PlaceName   string    `json:"p_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && t.ExpiresAt.After(now.Add(RefreshMargin))
}

// TokenStore shares the access token between processes. LoadToken returns ErrNoToken
// when nothing is cached.
type TokenStore interface {
	LoadToken(ctx context.Context) (Token, error)
	SaveToken(ctx context.Context, t Token) error
}

type MemoryTokens struct {
	mu  sync.Mutex
	tok *Token
}

func NewMemoryTokens() *MemoryTokens { return &MemoryTokens{} }

func (m *MemoryTokens) LoadToken(context.Context) (Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tok == nil {
		return Token{}, ErrNoToken
	}
	return *m.tok, nil
}

func (m *MemoryTokens) SaveToken(_ context.Context, t Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = &t
	return nil
}
