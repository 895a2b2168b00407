// Package secrets loads the token signing secret from the Google Cloud Secret
// Manager or from a local file.
package secrets

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
)

// SecretClient wraps the AccessSecretVersion function provided by the
// secretmanager.Client.
type SecretClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	ListSecretVersions(ctx context.Context, req *secretmanagerpb.ListSecretVersionsRequest, opts ...gax.CallOption) *secretmanager.SecretVersionIterator
}

// iter warps the Next() method of a *secretmanager.SecretVersionIterator.
type iter interface {
	Next(it *secretmanager.SecretVersionIterator) (*secretmanagerpb.SecretVersion, error)
}

// stdIter implements the iter interfaces, and is used to invoke the
// iterator.Next() method.
type stdIter struct{}

// Next invokes the Next() method of a *secretmanager.SecretVersionIterator.
func (s *stdIter) Next(it *secretmanager.SecretVersionIterator) (*secretmanagerpb.SecretVersion, error) {
	return it.Next()
}

// Config identifies the secret holding the signing key.
type Config struct {
	iter    iter
	Name    string
	Project string
}

// NewConfig creates a new secret config.
func NewConfig(project, name string) *Config {
	return &Config{
		iter:    &stdIter{},
		Name:    name,
		Project: project,
	}
}

// getSecret fetches the version of a secret specified by 'path' from the Secret
// Manager API.
func (c *Config) getSecret(ctx context.Context, client SecretClient, path string) ([]byte, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: path,
	}

	result, err := client.AccessSecretVersion(ctx, req)
	if err != nil {
		return nil, err
	}

	return result.Payload.Data, nil
}

// getSecretVersions returns a slice of all *enabled* versions for a secret,
// newest first. It ignores disabled or destroyed versions of a secret.
func (c *Config) getSecretVersions(ctx context.Context, client SecretClient) ([]string, error) {
	req := &secretmanagerpb.ListSecretVersionsRequest{
		Parent:   c.path(),
		PageSize: 1000,
	}

	it := client.ListSecretVersions(ctx, req)
	versions := []string{}
	for {
		resp, err := c.iter.Next(it)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if resp.State != secretmanagerpb.SecretVersion_ENABLED {
			continue
		}
		versions = append(versions, resp.Name)
	}

	if len(versions) < 1 {
		return nil, fmt.Errorf("no versions found for secret: %s", c.Name)
	}

	return versions, nil
}

// LoadSecret fetches the newest enabled version of the named secret and
// returns its payload with surrounding whitespace removed. The payload is the
// base64 encoded signing key.
func (c *Config) LoadSecret(ctx context.Context, client SecretClient) (string, error) {
	versions, err := c.getSecretVersions(ctx, client)
	if err != nil {
		return "", err
	}
	log.WithFields(log.Fields{
		"version": versions[0],
	}).Info("Loading token signing secret")
	key, err := c.getSecret(ctx, client, versions[0])
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(key)), nil
}

func (c *Config) path() string {
	return "projects/" + c.Project + "/secrets/" + c.Name
}
