package secretstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringBackend reads from the platform-native keystore (macOS Keychain,
// the Secret Service / libsecret on Linux, Windows Credential Manager)
// via zalando/go-keyring's service/account model — this is spec.md
// §4.1 tier 2, "a platform-specific command-line tool that reads a
// generic password by (service, account) tuple", implemented here
// through the library rather than shelling out, since go-keyring wraps
// the same native APIs those CLI tools call.
type KeyringBackend struct{}

func (k *KeyringBackend) Name() string { return "system keystore" }

func (k *KeyringBackend) Read(ctx context.Context, providerID string) (Secret, error) {
	service := "thesystem/" + providerID
	val, err := keyring.Get(service, providerID)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Secret{}, fmt.Errorf("%w: %s", ErrNotFound, providerID)
		}
		return Secret{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return NewSecret([]byte(val)), nil
}
