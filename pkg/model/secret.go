package model

import "github.com/pkg/errors"

// SecretName references credential material held by the cluster. Names are
// validated on entry so they can be interpolated into object names and
// environment variables without further checking.
type SecretName string

// maxSecretNameLength matches the Kubernetes object name limit.
const maxSecretNameLength = 253

// NewSecretName validates s and returns it as a SecretName.
func NewSecretName(s string) (SecretName, error) {
	name := SecretName(s)
	return name, name.Validate()
}

// Validate checks the name for emptiness, length, and character set. Allowed
// characters are letters, digits, '.', '_' and '-'.
func (s SecretName) Validate() error {
	if len(s) == 0 {
		return errors.New("secret name may not be empty")
	}
	if len(s) > maxSecretNameLength {
		return errors.Errorf("secret name %q exceeds %d characters", string(s), maxSecretNameLength)
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return errors.Errorf("secret name %q contains disallowed character %q", string(s), r)
		}
	}
	return nil
}

func (s SecretName) String() string {
	return string(s)
}
