package config

import "context"

// SecretProvider resolves *_SSM_PARAM pointers to secret values. SSMProvider
// backs deployed environments; EnvVarProvider backs local runs and tests.
type SecretProvider interface {
	// GetParametersBatch resolves keys and returns key -> plaintext value for
	// every key that was found.
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
