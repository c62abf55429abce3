package secrets

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"github.com/rs/zerolog/log"
)

// Options selects the authentication mode for the vault. When tenant, client
// and secret are all set, service principal authentication is used; otherwise
// the default credential chain (environment, managed identity, CLI) applies.
type Options struct {
	VaultURL     string
	TenantID     string
	ClientID     string
	ClientSecret string
}

// Vault reads secrets from a key vault
type Vault struct {
	client *azsecrets.Client
}

// NewVault creates a vault client for the given vault URL
func NewVault(options *Options) (*Vault, error) {
	if options.VaultURL == "" {
		return nil, fmt.Errorf("no vault URL given")
	}

	credential, err := buildCredential(options)
	if err != nil {
		return nil, err
	}

	client, err := azsecrets.NewClient(options.VaultURL, credential, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	return &Vault{client: client}, nil
}

func buildCredential(options *Options) (azcore.TokenCredential, error) {
	if options.TenantID != "" && options.ClientID != "" && options.ClientSecret != "" {
		credential, err := azidentity.NewClientSecretCredential(options.TenantID, options.ClientID, options.ClientSecret, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create service principal credential: %w", err)
		}
		log.Debug().Str("clientId", options.ClientID).Msg("Using service principal authentication")
		return credential, nil
	}

	credential, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create default credential: %w", err)
	}
	log.Debug().Msg("Using default credential chain")
	return credential, nil
}

// GetSecret retrieves a single secret value. An empty version retrieves the
// latest.
func (v *Vault) GetSecret(ctx context.Context, name, version string) (string, error) {
	response, err := v.client.GetSecret(ctx, name, version, nil)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve secret %q: %w", name, err)
	}
	if response.Value == nil {
		return "", fmt.Errorf("secret %q has no value", name)
	}
	return *response.Value, nil
}

// GetSecrets retrieves the latest version of each named secret. The first
// failure aborts the lookup.
func (v *Vault) GetSecrets(ctx context.Context, names []string) (map[string]string, error) {
	values := make(map[string]string, len(names))
	for _, name := range names {
		value, err := v.GetSecret(ctx, name, "")
		if err != nil {
			return nil, err
		}
		values[name] = value
	}
	return values, nil
}

// ListSecrets returns the names of all secrets in the vault
func (v *Vault) ListSecrets(ctx context.Context) ([]string, error) {
	var names []string
	pager := v.client.NewListSecretPropertiesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list secrets: %w", err)
		}
		for _, secret := range page.Value {
			if secret.ID != nil {
				names = append(names, secret.ID.Name())
			}
		}
	}
	return names, nil
}
