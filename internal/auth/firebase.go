package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// FirebaseCertsURL publishes the certificates Firebase ID tokens are signed with.
const FirebaseCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const defaultCertsTTL = time.Hour

var maxAgePattern = regexp.MustCompile(`max-age=(\d+)`)

type firebaseClaims struct {
	Email string `json:"email"`
	Admin bool   `json:"admin"`
	jwt.StandardClaims
}

// FirebaseVerifier validates Firebase ID tokens for one project. Signing keys
// are fetched on demand and cached for as long as the certificate endpoint
// allows.
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

// NewFirebaseVerifier creates a verifier for projectID. An empty certsURL
// selects FirebaseCertsURL.
func NewFirebaseVerifier(projectID, certsURL string, client *http.Client) *FirebaseVerifier {
	if certsURL == "" {
		certsURL = FirebaseCertsURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FirebaseVerifier{
		projectID: projectID,
		certsURL:  certsURL,
		client:    client,
	}
}

func (v *FirebaseVerifier) Name() string { return "firebase" }

// Verify checks the token signature, expiry, audience and issuer.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	keys, err := v.publicKeys(ctx)
	if err != nil {
		return nil, err
	}

	var claims firebaseClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodRS256 {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		kid, _ := t.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, errors.Errorf("unknown key id %q", kid)
		}
		return key, nil
	})
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}

	issuer := "https://securetoken.google.com/" + v.projectID
	switch {
	case !claims.VerifyAudience(v.projectID, true):
		return nil, errors.Wrapf(ErrInvalidToken, "audience %q", claims.Audience)
	case !claims.VerifyIssuer(issuer, true):
		return nil, errors.Wrapf(ErrInvalidToken, "issuer %q", claims.Issuer)
	case claims.Subject == "":
		return nil, errors.Wrap(ErrInvalidToken, "missing subject")
	}

	return &Claims{Subject: claims.Subject, Email: claims.Email, Admin: claims.Admin}, nil
}

func (v *FirebaseVerifier) publicKeys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	v.mu.RLock()
	keys, expires := v.keys, v.expires
	v.mu.RUnlock()
	if keys != nil && time.Now().Before(expires) {
		return keys, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.keys != nil && time.Now().Before(v.expires) {
		return v.keys, nil
	}

	keys, ttl, err := v.fetchKeys(ctx)
	if err != nil {
		return nil, err
	}
	v.keys = keys
	v.expires = time.Now().Add(ttl)
	return keys, nil
}

func (v *FirebaseVerifier) fetchKeys(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "building certificate request")
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "fetching signing certificates")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, errors.Errorf("fetching signing certificates: unexpected status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return nil, 0, errors.Wrap(err, "decoding signing certificates")
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, 0, errors.Wrapf(err, "parsing certificate %s", kid)
		}
		keys[kid] = key
	}
	return keys, cacheTTL(resp.Header.Get("Cache-Control")), nil
}

func cacheTTL(cacheControl string) time.Duration {
	m := maxAgePattern.FindStringSubmatch(cacheControl)
	if m == nil {
		return defaultCertsTTL
	}
	seconds, err := strconv.Atoi(m[1])
	if err != nil {
		return defaultCertsTTL
	}
	return time.Duration(seconds) * time.Second
}
