package watsonx

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// tokenExpirySkew renews tokens slightly before the server-side expiry.
const tokenExpirySkew = 60 * time.Second

// tokenManager caches an IBM Cloud IAM access token and re-acquires it
// on expiry. Acquisition is serialized so concurrent callers share one
// token request.
type tokenManager struct {
	http   *http.Client
	iamURL string
	apiKey string

	mu      sync.Mutex
	token   string
	expires time.Time
}

func newTokenManager(hc *http.Client, iamURL, apiKey string) *tokenManager {
	return &tokenManager{http: hc, iamURL: iamURL, apiKey: apiKey}
}

// tokenResponse is the IAM token grant result.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns a valid access token, acquiring or renewing as needed.
func (m *tokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && time.Now().Before(m.expires) {
		return m.token, nil
	}

	form := url.Values{
		"grant_type": {"urn:ibm:params:oauth:grant-type:apikey"},
		"apikey":     {m.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.iamURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", eris.Wrap(err, "watsonx: create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "watsonx: acquire token")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", eris.Wrap(err, "watsonx: read token response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("watsonx: token endpoint status %d: %s", resp.StatusCode, string(body))
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return "", eris.Wrap(err, "watsonx: unmarshal token response")
	}
	if tr.AccessToken == "" {
		return "", eris.New("watsonx: token response missing access_token")
	}

	m.token = tr.AccessToken
	expiry := time.Duration(tr.ExpiresIn) * time.Second
	if expiry > tokenExpirySkew {
		expiry -= tokenExpirySkew
	}
	m.expires = time.Now().Add(expiry)

	return m.token, nil
}

// Invalidate drops the cached token so the next call re-acquires.
func (m *tokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expires = time.Time{}
}
