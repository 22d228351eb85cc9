package auth

import (
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"

	"carrental/internal/config"
)

// FromConfig builds the verifier selected by cfg.Mode.
func FromConfig(cfg config.AuthConfig) (Verifier, error) {
	switch cfg.Mode {
	case config.AuthModeLocal:
		v, err := NewLocalVerifier(cfg.LocalSecret, DefaultLocalTokenTTL)
		if err != nil {
			return nil, err
		}
		return v, nil
	case config.AuthModeFirebase:
		sa, err := LoadServiceAccount(cfg.ServiceAccountJSON, cfg.ServiceAccountFile)
		if err != nil {
			return nil, errors.Wrap(err, "loading firebase credentials")
		}
		grip.Info(message.Fields{
			"message":    "firebase verifier configured",
			"project_id": sa.ProjectID,
		})
		return NewFirebaseVerifier(sa.ProjectID, "", nil), nil
	default:
		return nil, errors.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
