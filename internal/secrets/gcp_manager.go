package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// ErrEmptyToken is returned when a secret holds no usable access token.
var ErrEmptyToken = errors.New("secret contains no access token")

// AccessTokenSecret is the JSON form of a stored Meta access token.
// A secret may also hold the bare token string.
type AccessTokenSecret struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// cacheEntry represents a cached token with expiration
type cacheEntry struct {
	token     string
	expiresAt time.Time
}

// accessFunc reads the latest version payload of a secret.
type accessFunc func(ctx context.Context, versionName string) ([]byte, error)

// GCPSecretManager reads the Meta access token from Google Cloud Secret Manager
type GCPSecretManager struct {
	client    *secretmanager.Client
	access    accessFunc
	projectID string
	cache     map[string]*cacheEntry
	cacheMu   sync.RWMutex
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewGCPSecretManager creates a new GCP Secret Manager client
func NewGCPSecretManager(ctx context.Context, projectID string) (*GCPSecretManager, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}

	sm := newManager(projectID, func(ctx context.Context, name string) ([]byte, error) {
		result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			return nil, err
		}
		return result.GetPayload().GetData(), nil
	})
	sm.client = client
	return sm, nil
}

func newManager(projectID string, access accessFunc) *GCPSecretManager {
	return &GCPSecretManager{
		access:    access,
		projectID: projectID,
		cache:     make(map[string]*cacheEntry),
		cacheTTL:  5 * time.Minute,
		now:       time.Now,
	}
}

// Close closes the Secret Manager client
func (sm *GCPSecretManager) Close() error {
	if sm.client != nil {
		return sm.client.Close()
	}
	return nil
}

// BuildSecretName expands a bare secret id to its full resource name.
// Names already starting with "projects/" are returned unchanged.
func (sm *GCPSecretManager) BuildSecretName(secretID string) string {
	if strings.HasPrefix(secretID, "projects/") {
		return secretID
	}
	return fmt.Sprintf("projects/%s/secrets/%s", sm.projectID, sanitizeSecretID(secretID))
}

// GetAccessToken returns the latest access token stored under secretID.
// Tokens are cached for five minutes.
func (sm *GCPSecretManager) GetAccessToken(ctx context.Context, secretID string) (string, error) {
	secretName := sm.BuildSecretName(secretID)

	// Check cache first
	sm.cacheMu.RLock()
	if entry, ok := sm.cache[secretName]; ok && sm.now().Before(entry.expiresAt) {
		sm.cacheMu.RUnlock()
		return entry.token, nil
	}
	sm.cacheMu.RUnlock()

	data, err := sm.access(ctx, secretName+"/versions/latest")
	if err != nil {
		return "", fmt.Errorf("failed to access secret: %w", err)
	}

	token, err := ParseAccessToken(data)
	if err != nil {
		return "", fmt.Errorf("secret %s: %w", secretID, err)
	}

	sm.cacheMu.Lock()
	sm.cache[secretName] = &cacheEntry{
		token:     token,
		expiresAt: sm.now().Add(sm.cacheTTL),
	}
	sm.cacheMu.Unlock()

	return token, nil
}

// InvalidateCache drops the cached token for secretID, forcing the next
// read to hit Secret Manager. Call it after the remote API rejects the token.
func (sm *GCPSecretManager) InvalidateCache(secretID string) {
	sm.cacheMu.Lock()
	delete(sm.cache, sm.BuildSecretName(secretID))
	sm.cacheMu.Unlock()
}

// ClearCache removes all tokens from the cache
func (sm *GCPSecretManager) ClearCache() {
	sm.cacheMu.Lock()
	sm.cache = make(map[string]*cacheEntry)
	sm.cacheMu.Unlock()
}

// ParseAccessToken accepts either a JSON AccessTokenSecret or a bare token.
func ParseAccessToken(data []byte) (string, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return "", ErrEmptyToken
	}
	if !strings.HasPrefix(raw, "{") {
		return raw, nil
	}

	var secret AccessTokenSecret
	if err := json.Unmarshal([]byte(raw), &secret); err != nil {
		return "", fmt.Errorf("failed to unmarshal secret: %w", err)
	}
	token := strings.TrimSpace(secret.AccessToken)
	if token == "" {
		return "", ErrEmptyToken
	}
	return token, nil
}

// sanitizeSecretID removes or replaces invalid characters for GCP secret IDs
// Secret IDs can only contain alphanumeric characters, hyphens, and underscores
func sanitizeSecretID(input string) string {
	var result strings.Builder
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		} else {
			result.WriteRune('-')
		}
	}
	return result.String()
}
