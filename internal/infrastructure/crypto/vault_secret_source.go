package crypto

import (
	"fmt"
	"sync"

	vault "github.com/hashicorp/vault/api"

	"github.com/elevate-edu/elevate/internal/config"
)

// VaultSecretSource loads the JWT signing key from HashiCorp Vault's KV v2
// engine. The key is fetched once and cached for the process lifetime.
type VaultSecretSource struct {
	client *vault.Client
	path   string
	key    string

	mu     sync.Mutex
	cached []byte
}

// NewVaultSecretSource connects to Vault using the configured address and
// token.
func NewVaultSecretSource(cfg config.VaultConfig) (*VaultSecretSource, error) {
	vaultCfg := vault.DefaultConfig()
	vaultCfg.Address = cfg.Address

	client, err := vault.NewClient(vaultCfg)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	client.SetToken(cfg.Token)

	return &VaultSecretSource{
		client: client,
		path:   cfg.SecretPath,
		key:    cfg.SecretKey,
	}, nil
}

// SigningKey fetches and caches the signing key.
func (s *VaultSecretSource) SigningKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached != nil {
		return s.cached, nil
	}

	secret, err := s.client.Logical().Read(s.path)
	if err != nil {
		return nil, fmt.Errorf("read vault secret %s: %w", s.path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("vault secret %s not found", s.path)
	}

	// KV v2 nests the payload under "data".
	data := secret.Data
	if nested, ok := secret.Data["data"].(map[string]interface{}); ok {
		data = nested
	}
	value, ok := data[s.key].(string)
	if !ok || value == "" {
		return nil, fmt.Errorf("vault secret %s missing key %s", s.path, s.key)
	}

	s.cached = []byte(value)
	return s.cached, nil
}
