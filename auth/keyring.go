// Package auth stores the metadata provider credential in the system keyring.
package auth

import (
	"errors"
	"strings"

	"github.com/petflix/petflix/constant"
	"github.com/petflix/petflix/key"
	"github.com/petflix/petflix/log"
	"github.com/samber/mo"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"
)

const user = "metadata-token"

// SetToken persists the metadata provider bearer token.
func SetToken(token string) error {
	return keyring.Set(constant.App, user, strings.TrimSpace(token))
}

// GetToken reads the token from the keyring only.
func GetToken() (string, error) {
	return keyring.Get(constant.App, user)
}

// DeleteToken removes the stored token. A missing token is not an error.
func DeleteToken() error {
	if err := keyring.Delete(constant.App, user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// Token resolves the credential: configuration and environment first, then the keyring.
func Token() mo.Option[string] {
	if token := strings.TrimSpace(viper.GetString(key.MetadataToken)); token != "" {
		return mo.Some(token)
	}

	token, err := GetToken()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			log.Debugf("auth: keyring: %v", err)
		}
		return mo.None[string]()
	}
	if token == "" {
		return mo.None[string]()
	}
	return mo.Some(token)
}
