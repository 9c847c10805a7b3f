package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erplink/backend/internal/domain/erp"
)

// Durable settings keys the token manager writes after a refresh. Subsequent
// process instances observe the refreshed token without re-authenticating.
const (
	SettingKeyAccessToken = "erp.p21.access_token"
	SettingKeyTokenExpiry = "erp.p21.token_expiry"
)

// SettingsStore accepts durable writes of refreshed token material. It is
// supplied by the configuration layer.
type SettingsStore interface {
	Put(key, value string) error
	Get(key string) (string, error)
}

// TokenState is the mutable credential slice of a backend configuration.
// Expiry is a unix timestamp in seconds; zero means no token recorded.
type TokenState struct {
	AccessToken string
	Expiry      int64
}

// Valid reports whether the recorded token is usable at now.
func (s TokenState) Valid(now time.Time) bool {
	return s.AccessToken != "" && now.Unix() < s.Expiry
}

// loadTokenState restores token material a previous process persisted after
// a refresh. Absent or unreadable settings yield a zero state, which forces
// a fresh grant.
func loadTokenState(store SettingsStore, log *zap.Logger) TokenState {
	token, err := store.Get(SettingKeyAccessToken)
	if err != nil {
		log.Warn("failed to read persisted access token", zap.Error(err))
		return TokenState{}
	}
	if token == "" {
		return TokenState{}
	}
	raw, err := store.Get(SettingKeyTokenExpiry)
	if err != nil {
		log.Warn("failed to read persisted token expiry", zap.Error(err))
		return TokenState{}
	}
	expiry, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		log.Warn("persisted token expiry is not a unix timestamp", zap.String("value", raw))
		return TokenState{}
	}
	return TokenState{AccessToken: token, Expiry: expiry}
}

// tokenGrantResponse is the password-grant success body.
type tokenGrantResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// refreshToken is the pure half of a refresh: given the grant response body
// and the request time, it computes the next token state. Grant failures are
// classified through the same validator profile as any other call, so
// invalid_grant and Unauthorized surface identically everywhere.
func refreshToken(body []byte, requestedAt time.Time) (TokenState, *erp.Error) {
	profile := &Profile{
		Backend:          "p21",
		Wire:             WireJSON,
		ErrorField:       "error",
		DescriptionField: "error_description",
	}
	if _, verr := profile.Validate(string(body)); verr != nil {
		return TokenState{}, verr
	}

	var grant tokenGrantResponse
	if err := json.Unmarshal(body, &grant); err != nil {
		return TokenState{}, erp.NewMalformedResponse(fmt.Sprintf("Unable to decode token response: %s", err.Error()))
	}
	if grant.AccessToken == "" {
		return TokenState{}, erp.NewMalformedResponse("Token response carries no access token")
	}

	return TokenState{
		AccessToken: grant.AccessToken,
		Expiry:      requestedAt.Unix() + grant.ExpiresIn,
	}, nil
}

// TokenManager acquires and caches the OAuth-style bearer token for the
// Prophet 21 backend. The check-and-refresh step runs once per backend
// instantiation; a long-lived instance may expire mid-lifetime, which is an
// external concern.
type TokenManager struct {
	tokenURL     string
	clientID     string
	clientSecret string
	username     string
	password     string

	state      TokenState
	store      SettingsStore
	httpClient *http.Client
	now        func() time.Time
	log        *zap.Logger
}

// NewTokenManager builds a token manager over the given credential set and
// durable store. timeout is the fixed per-call network timeout.
func NewTokenManager(tokenURL, clientID, clientSecret, username, password string, initial TokenState, store SettingsStore, timeout time.Duration, log *zap.Logger) *TokenManager {
	return &TokenManager{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		username:     username,
		password:     password,
		state:        initial,
		store:        store,
		httpClient:   &http.Client{Timeout: timeout},
		now:          time.Now,
		log:          log,
	}
}

// Token returns the current access token.
func (m *TokenManager) Token() string {
	return m.state.AccessToken
}

// State returns the current token state.
func (m *TokenManager) State() TokenState {
	return m.state
}

// EnsureValid transitions Expired -> Valid when needed. With a future expiry
// on record it performs zero network calls; otherwise it performs exactly one
// password-grant request and persists the refreshed token both in memory and
// through the durable store.
func (m *TokenManager) EnsureValid(ctx context.Context) *erp.Error {
	now := m.now()
	if m.state.Valid(now) {
		return nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", m.clientID)
	form.Set("client_secret", m.clientSecret)
	form.Set("username", m.username)
	form.Set("password", m.password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return erp.NewUnexpected(err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return erp.NewEmptyResponse(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return erp.NewMalformedResponse(fmt.Sprintf("Unable to read token response: %s", err.Error()))
	}

	state, verr := refreshToken(body, now)
	if verr != nil {
		return verr
	}

	m.state = state
	if m.store != nil {
		if err := m.store.Put(SettingKeyAccessToken, state.AccessToken); err != nil {
			m.log.Warn("failed to persist refreshed access token", zap.Error(err))
		}
		if err := m.store.Put(SettingKeyTokenExpiry, strconv.FormatInt(state.Expiry, 10)); err != nil {
			m.log.Warn("failed to persist refreshed token expiry", zap.Error(err))
		}
	}

	m.log.Info("refreshed ERP access token",
		zap.String("backend", "p21"),
		zap.Int64("expiry", state.Expiry),
	)
	return nil
}
