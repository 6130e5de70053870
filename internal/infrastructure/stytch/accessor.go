package stytch

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/baechuer/real-time-ressys/services/reset-service/internal/domain"
)

var errMissingCredentials = errors.New("stytch credentials are not configured")

// Accessor builds the Client once and hands out the same handle afterwards.
type Accessor struct {
	settings Settings
	lg       zerolog.Logger

	once   sync.Once
	client *Client
	err    error
}

func NewAccessor(s Settings, lg zerolog.Logger) *Accessor {
	return &Accessor{settings: s, lg: lg}
}

// Get is safe for concurrent use. Missing credentials yield the same
// configuration error on every call.
func (a *Accessor) Get() (*Client, error) {
	a.once.Do(func() {
		if a.settings.ProjectID == "" || a.settings.Secret == "" {
			a.err = domain.ErrConfiguration(errMissingCredentials)
			a.lg.Error().Msg("stytch client unavailable: credentials missing")
			return
		}
		a.client = NewClient(a.settings, a.lg)
		a.lg.Info().Str("base_url", a.client.BaseURL()).Msg("stytch client initialized")
	})
	return a.client, a.err
}
