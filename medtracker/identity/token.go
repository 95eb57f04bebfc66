package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GoogleCertsURL serves the x509 certificates that sign Firebase ID tokens,
// keyed by kid.
const GoogleCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const certsTTL = time.Hour

var (
	ErrNoKeyID      = errors.New("token has no kid header")
	ErrUnknownKeyID = errors.New("token signed with unknown key")
	ErrNoSubject    = errors.New("token has no subject")
)

// Claims are the ID token claims the console reads.
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`

	// Custom claim granted with GrantDoctor.
	Doctor bool `json:"doctor,omitempty"`
}

// TokenVerifier checks Firebase ID tokens locally against Google's published
// signing certificates.
type TokenVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewTokenVerifier(projectID string) *TokenVerifier {
	return &TokenVerifier{
		projectID: projectID,
		certsURL:  GoogleCertsURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Verify parses idToken and checks its signature, issuer, audience and
// expiry.
func (v *TokenVerifier) Verify(ctx context.Context, idToken string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(t *jwt.Token) (interface{}, error) {
		kid, ok := t.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, ErrNoKeyID
		}
		return v.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("while verifying id token: %w", err)
	}

	if claims.Subject == "" {
		return nil, ErrNoSubject
	}

	return claims, nil
}

func (v *TokenVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	key, ok := v.keys[kid]
	if ok && time.Since(v.fetchedAt) < certsTTL {
		return key, nil
	}

	if err := v.fetchLocked(ctx); err != nil {
		return nil, err
	}

	key, ok = v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKeyID, kid)
	}
	return key, nil
}

func (v *TokenVerifier) fetchLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return fmt.Errorf("while building certificate request: %w", err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("while fetching signing certificates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("certificate endpoint returned status %d", resp.StatusCode)
	}

	certs := map[string]string{}
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("while decoding signing certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, certPEM := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(certPEM))
		if err != nil {
			return fmt.Errorf("while parsing certificate %q: %w", kid, err)
		}
		keys[kid] = key
	}

	v.keys = keys
	v.fetchedAt = time.Now()
	return nil
}
