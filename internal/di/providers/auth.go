package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/listenupapp/seriesd/internal/auth"
	"github.com/listenupapp/seriesd/internal/config"
	"github.com/listenupapp/seriesd/internal/logger"
)

// ProvideTokenService reads the signing key from the data directory, creating
// it on first start, and builds the PASETO token service around it.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.App.DataDir)
	if err != nil {
		return nil, fmt.Errorf("token key: %w", err)
	}
	cfg.Auth.AccessTokenKey = key

	tokens, err := auth.NewTokenService(key, cfg.Auth.AccessTokenDuration)
	if err != nil {
		return nil, err
	}
	log.Debug("token service ready", "access_token_duration", tokens.Duration(), "data_dir", cfg.App.DataDir)
	return tokens, nil
}
