package platform

import (
	"fmt"
	"strings"

	"github.com/hubcast/hubcast/internal/formatter"
)

// Per-platform credential contracts. The stored config blob decodes into a
// typed struct whose Validate names the missing fields, catching bad configs
// at save time rather than at delivery time. api_base is always optional;
// adapters fall back to their default endpoint.

// Credentials is a decoded, platform-specific credential set.
type Credentials interface {
	Validate() error
}

type MicroblogCredentials struct {
	APIKey            string
	APISecret         string
	AccessToken       string
	AccessTokenSecret string
	APIBase           string
}

func (c MicroblogCredentials) Validate() error {
	return requireFields(
		field{"api_key", c.APIKey},
		field{"api_secret", c.APISecret},
		field{"access_token", c.AccessToken},
		field{"access_token_secret", c.AccessTokenSecret},
	)
}

type SocialFeedCredentials struct {
	AccessToken string
	PageID      string
	APIBase     string
}

func (c SocialFeedCredentials) Validate() error {
	return requireFields(
		field{"access_token", c.AccessToken},
		field{"page_id", c.PageID},
	)
}

type ProfessionalNetworkCredentials struct {
	AccessToken    string
	OrganizationID string
	APIBase        string
}

func (c ProfessionalNetworkCredentials) Validate() error {
	return requireFields(
		field{"access_token", c.AccessToken},
		field{"organization_id", c.OrganizationID},
	)
}

type LongFormCredentials struct {
	AccessToken string
	AuthorID    string
	APIBase     string
}

func (c LongFormCredentials) Validate() error {
	return requireFields(
		field{"access_token", c.AccessToken},
		field{"author_id", c.AuthorID},
	)
}

type DevCommunityCredentials struct {
	APIKey  string
	APIBase string
}

func (c DevCommunityCredentials) Validate() error {
	return requireFields(field{"api_key", c.APIKey})
}

type NewsletterCredentials struct {
	APIKey   string
	ListID   string
	FromName string
	APIBase  string
}

func (c NewsletterCredentials) Validate() error {
	return requireFields(
		field{"api_key", c.APIKey},
		field{"list_id", c.ListID},
	)
}

// credentialSchemas binds each platform to its typed decoder.
var credentialSchemas = map[string]func(map[string]string) Credentials{
	formatter.PlatformMicroblog: func(d map[string]string) Credentials {
		return MicroblogCredentials{
			APIKey:            d["api_key"],
			APISecret:         d["api_secret"],
			AccessToken:       d["access_token"],
			AccessTokenSecret: d["access_token_secret"],
			APIBase:           d["api_base"],
		}
	},
	formatter.PlatformSocialFeed: func(d map[string]string) Credentials {
		return SocialFeedCredentials{
			AccessToken: d["access_token"],
			PageID:      d["page_id"],
			APIBase:     d["api_base"],
		}
	},
	formatter.PlatformProfessionalNetwork: func(d map[string]string) Credentials {
		return ProfessionalNetworkCredentials{
			AccessToken:    d["access_token"],
			OrganizationID: d["organization_id"],
			APIBase:        d["api_base"],
		}
	},
	formatter.PlatformLongForm: func(d map[string]string) Credentials {
		return LongFormCredentials{
			AccessToken: d["access_token"],
			AuthorID:    d["author_id"],
			APIBase:     d["api_base"],
		}
	},
	formatter.PlatformDevCommunity: func(d map[string]string) Credentials {
		return DevCommunityCredentials{
			APIKey:  d["api_key"],
			APIBase: d["api_base"],
		}
	},
	formatter.PlatformNewsletter: func(d map[string]string) Credentials {
		return NewsletterCredentials{
			APIKey:   d["api_key"],
			ListID:   d["list_id"],
			FromName: d["from_name"],
			APIBase:  d["api_base"],
		}
	},
}

// DecodeCredentials decodes the config blob into the platform's typed
// credential struct and validates it.
func DecodeCredentials(platform string, data map[string]string) (Credentials, error) {
	decode, ok := credentialSchemas[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}
	creds := decode(data)
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("platform %s: %w", platform, err)
	}
	return creds, nil
}

// ValidateCredentials checks the config blob against the platform's typed
// credential contract. Called by the config store before saving.
func ValidateCredentials(platform string, data map[string]string) error {
	_, err := DecodeCredentials(platform, data)
	return err
}

// Complete reports whether data satisfies the platform's credential
// contract. Adapters use this for their IsConfigured check.
func Complete(platform string, data map[string]string) bool {
	return ValidateCredentials(platform, data) == nil
}

type field struct {
	name  string
	value string
}

func requireFields(fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
