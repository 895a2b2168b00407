package secrets

import (
	"context"
	"os"
	"strings"
)

// LocalConfig supports loading the signing secret from a local file rather
// than from secretmanager.
type LocalConfig struct{}

// NewLocalConfig creates a new instance for loading a local signing secret.
func NewLocalConfig() *LocalConfig {
	return &LocalConfig{}
}

// LoadSecret reads the base64 signing secret from the named file.
func (c *LocalConfig) LoadSecret(ctx context.Context, name string) (string, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
