package sessions

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/quant-web-client/apiclient"
	"github.com/jrsteele09/quant-web-client/authapi"
	"github.com/jrsteele09/quant-web-client/internal/errors"
	"github.com/jrsteele09/quant-web-client/notify"
	"github.com/jrsteele09/quant-web-client/storage"
	"github.com/jrsteele09/quant-web-client/users"
	"github.com/rs/zerolog/log"
)

// AuthAPI is the part of the user service the Store depends on.
type AuthAPI interface {
	Login(ctx context.Context, creds authapi.Credentials) (*apiclient.Envelope[authapi.LoginResponse], error)
	Register(ctx context.Context, data users.Registration) (*apiclient.Envelope[users.Profile], error)
	Logout(ctx context.Context) (*apiclient.Envelope[any], error)
	RefreshToken(ctx context.Context, refreshToken string) (*apiclient.Envelope[authapi.LoginResponse], error)
	GetUserProfile(ctx context.Context) (*apiclient.Envelope[users.Profile], error)
	UpdateUserProfile(ctx context.Context, data users.ProfileUpdate) (*apiclient.Envelope[users.Profile], error)
}

var _ AuthAPI = (*authapi.Client)(nil)

// Store owns the session. Every change to the tokens or the user is written
// to storage before the in-memory copy is updated. Network calls are made
// without holding the lock, so concurrent actions resolve last writer wins.
type Store struct {
	api       AuthAPI
	repo      storage.Repo
	navigator Navigator
	notifier  notify.Notifier
	nowTime   func() time.Time

	session        Session
	loading        int
	authenticating int
	lock           sync.RWMutex
}

type StoreOption func(*Store)

func WithNavigator(n Navigator) StoreOption {
	return func(s *Store) {
		s.navigator = n
	}
}

func WithNotifier(n notify.Notifier) StoreOption {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithNowTime sets the clock used for token expiry checks (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// New returns a Store with the token pair hydrated from repo. The user is
// hydrated by CheckAuth.
func New(api AuthAPI, repo storage.Repo, options ...StoreOption) (*Store, error) {
	if api == nil {
		return nil, errors.New("[New] auth api is required")
	}
	if repo == nil {
		return nil, errors.New("[New] storage repo is required")
	}

	s := &Store{
		api:       api,
		repo:      repo,
		navigator: nopNavigator{},
		notifier:  notify.Discard,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	var err error
	if s.session.AccessToken, err = storage.Lookup(repo, storage.KeyToken); err != nil {
		return nil, errors.Wrapf(err, "[New] failed to read %s", storage.KeyToken)
	}
	if s.session.RefreshToken, err = storage.Lookup(repo, storage.KeyRefreshToken); err != nil {
		return nil, errors.Wrapf(err, "[New] failed to read %s", storage.KeyRefreshToken)
	}
	return s, nil
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.lock.RLock()
	defer s.lock.RUnlock()

	out := s.session
	out.User = copyProfile(s.session.User)
	out.IsLoading = s.loading > 0
	return out
}

func (s *Store) IsAuthenticated() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.session.IsAuthenticated()
}

// User returns a copy of the cached profile, nil when none is held.
func (s *Store) User() *users.Profile {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return copyProfile(s.session.User)
}

func (s *Store) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()

	switch {
	case s.authenticating > 0:
		return StateAuthenticating
	case s.session.IsAuthenticated():
		return StateAuthenticated
	default:
		return StateAnonymous
	}
}

// Login authenticates with the user service. On success the token pair and
// user are persisted and held, and the client navigates to the dashboard. On
// failure nothing is changed and the error is returned.
func (s *Store) Login(ctx context.Context, creds authapi.Credentials) (*apiclient.Envelope[authapi.LoginResponse], error) {
	done := s.begin(true)
	defer done()

	resp, err := s.api.Login(ctx, creds)
	if err == nil && !resp.Success {
		err = rejectedError(resp.Message, MsgLoginFailed, errors.ErrLoginRejected)
	}
	if err != nil {
		s.notifier.Error(apiclient.MessageOf(err, MsgLoginFailed))
		return nil, err
	}

	data := resp.Data
	user, err := json.Marshal(data.User)
	if err != nil {
		s.notifier.Error(MsgLoginFailed)
		return nil, errors.Wrapf(err, "[Login] failed to encode user")
	}
	if err := s.repo.SetAll(map[string]string{
		storage.KeyToken:        data.AccessToken,
		storage.KeyRefreshToken: data.RefreshToken,
		storage.KeyUser:         string(user),
	}); err != nil {
		s.notifier.Error(MsgLoginFailed)
		return nil, errors.Wrapf(err, "[Login] failed to persist session")
	}

	s.lock.Lock()
	s.session.AccessToken = data.AccessToken
	s.session.RefreshToken = data.RefreshToken
	s.session.User = copyProfile(data.User)
	s.lock.Unlock()

	log.Info().Str("user", data.User.DisplayName()).Msg("logged in")
	s.notifier.Success(MsgLoginSuccess)
	s.navigator.Push(PathDashboard)
	return resp, nil
}

// Register creates an account and sends the client to the login page. The
// session is not authenticated.
func (s *Store) Register(ctx context.Context, data users.Registration) (*apiclient.Envelope[users.Profile], error) {
	done := s.begin(false)
	defer done()

	resp, err := s.api.Register(ctx, data)
	if err == nil && !resp.Success {
		err = rejectedError(resp.Message, MsgRegisterFailed, nil)
	}
	if err != nil {
		s.notifier.Error(apiclient.MessageOf(err, MsgRegisterFailed))
		return nil, err
	}

	s.notifier.Success(MsgRegisterSuccess)
	s.navigator.Push(PathLogin)
	return resp, nil
}

// Logout tells the user service when a token is held, then clears the
// session whatever the outcome of that call. Only a storage failure is
// returned.
func (s *Store) Logout(ctx context.Context) error {
	if s.IsAuthenticated() {
		if _, err := s.api.Logout(ctx); err != nil {
			log.Warn().Err(err).Msg("logout request failed")
		}
	}

	err := s.ClearAuth()
	s.notifier.Success(MsgLoggedOut)
	s.navigator.Push(PathLogin)
	return err
}

// ClearAuth drops the token pair and user from memory and removes the three
// persisted keys in one delete. Memory is cleared even if the delete fails.
func (s *Store) ClearAuth() error {
	err := s.repo.Delete(storage.SessionKeys...)

	s.lock.Lock()
	s.session.AccessToken = ""
	s.session.RefreshToken = ""
	s.session.User = nil
	s.lock.Unlock()

	if err != nil {
		return errors.Wrapf(err, "[ClearAuth] failed to remove persisted session")
	}
	return nil
}

// CheckAuth restores a persisted session and verifies it against the user
// service. Any failure clears the session. It reports whether the session is
// authenticated afterwards.
func (s *Store) CheckAuth(ctx context.Context) bool {
	token, err := storage.Lookup(s.repo, storage.KeyToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read persisted token")
		return s.IsAuthenticated()
	}
	stored, err := storage.Lookup(s.repo, storage.KeyUser)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read persisted user")
		return s.IsAuthenticated()
	}
	if token == "" || stored == "" {
		return s.IsAuthenticated()
	}

	var user *users.Profile
	if err := json.Unmarshal([]byte(stored), &user); err != nil {
		log.Warn().Err(errors.Wrapf(errors.ErrInvalidSession, "%v", err)).Msg("clearing session")
		s.clearQuietly()
		return false
	}

	s.lock.Lock()
	s.session.AccessToken = token
	s.session.User = user
	s.lock.Unlock()

	resp, err := s.api.GetUserProfile(ctx)
	if err == nil && !resp.Success {
		err = rejectedError(resp.Message, apiclient.AuthMessages.Rejected, errors.ErrInvalidSession)
	}
	if err != nil {
		log.Info().Err(err).Msg("stored token rejected, clearing session")
		s.clearQuietly()
		return false
	}

	profile := resp.Data
	if encoded, err := json.Marshal(&profile); err != nil {
		log.Warn().Err(err).Msg("failed to encode user")
	} else if err := s.repo.Set(storage.KeyUser, string(encoded)); err != nil {
		log.Warn().Err(err).Msg("failed to persist user")
	} else {
		s.lock.Lock()
		s.session.User = &profile
		s.lock.Unlock()
	}
	return s.IsAuthenticated()
}

// UpdateProfile sends profile changes and caches the returned profile. It
// requires an authenticated session.
func (s *Store) UpdateProfile(ctx context.Context, data users.ProfileUpdate) (*apiclient.Envelope[users.Profile], error) {
	if !s.IsAuthenticated() {
		err := apiclient.NewPreconditionError(MsgLoginRequired, errors.ErrNotAuthenticated)
		s.notifier.Error(err.Message)
		return nil, err
	}

	done := s.begin(false)
	defer done()

	resp, err := s.api.UpdateUserProfile(ctx, data)
	if err == nil && !resp.Success {
		err = rejectedError(resp.Message, MsgUpdateFailed, nil)
	}
	if err != nil {
		s.notifier.Error(apiclient.MessageOf(err, MsgUpdateFailed))
		return nil, err
	}

	profile := resp.Data
	encoded, err := json.Marshal(&profile)
	if err == nil {
		err = s.repo.Set(storage.KeyUser, string(encoded))
	}
	if err != nil {
		s.notifier.Error(MsgUpdateFailed)
		return nil, errors.Wrapf(err, "[UpdateProfile] failed to persist user")
	}

	s.lock.Lock()
	s.session.User = &profile
	s.lock.Unlock()

	s.notifier.Success(MsgProfileUpdated)
	return resp, nil
}

// RefreshAuthToken exchanges the refresh token for a new pair and returns the
// new access token. Without a refresh token it fails at once and changes
// nothing. Any other failure clears the session and sends the client to the
// login page.
func (s *Store) RefreshAuthToken(ctx context.Context) (string, error) {
	s.lock.RLock()
	refreshToken := s.session.RefreshToken
	s.lock.RUnlock()

	if refreshToken == "" {
		return "", apiclient.NewPreconditionError(MsgNoRefreshToken, errors.ErrNoRefreshToken)
	}

	token, err := s.refresh(ctx, refreshToken)
	if err != nil {
		if clearErr := s.ClearAuth(); clearErr != nil {
			log.Err(clearErr).Msg("failed to clear session after refresh failure")
		}
		s.navigator.Push(PathLogin)
		return "", err
	}
	return token, nil
}

func (s *Store) refresh(ctx context.Context, refreshToken string) (string, error) {
	resp, err := s.api.RefreshToken(ctx, refreshToken)
	if err == nil && !resp.Success {
		err = rejectedError(resp.Message, apiclient.AuthMessages.Rejected, errors.ErrInvalidSession)
	}
	if err != nil {
		return "", err
	}

	data := resp.Data
	if err := s.repo.SetAll(map[string]string{
		storage.KeyToken:        data.AccessToken,
		storage.KeyRefreshToken: data.RefreshToken,
	}); err != nil {
		return "", errors.Wrapf(err, "[RefreshAuthToken] failed to persist tokens")
	}

	s.lock.Lock()
	s.session.AccessToken = data.AccessToken
	s.session.RefreshToken = data.RefreshToken
	s.lock.Unlock()

	log.Debug().Msg("access token refreshed")
	return data.AccessToken, nil
}

// TokenExpiry reads the exp claim of the access token. The signature is not
// checked; the server remains the authority on validity. ok is false when no
// token is held or it carries no readable expiry.
func (s *Store) TokenExpiry() (expiry time.Time, ok bool) {
	s.lock.RLock()
	token := s.session.AccessToken
	s.lock.RUnlock()

	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		log.Debug().Err(err).Msg("access token is not a readable jwt")
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// EnsureFresh returns a usable access token, refreshing first when the token
// expires within leeway. Tokens without a readable expiry are returned as is.
func (s *Store) EnsureFresh(ctx context.Context, leeway time.Duration) (string, error) {
	s.lock.RLock()
	token := s.session.AccessToken
	s.lock.RUnlock()

	if token == "" {
		return "", apiclient.NewPreconditionError(MsgLoginRequired, errors.ErrNotAuthenticated)
	}
	expiry, ok := s.TokenExpiry()
	if !ok || s.nowTime().Add(leeway).Before(expiry) {
		return token, nil
	}
	log.Debug().Time("expiry", expiry).Msg("access token due for refresh")
	return s.RefreshAuthToken(ctx)
}

// begin marks an action in flight and returns the func that ends it.
func (s *Store) begin(authenticating bool) func() {
	s.lock.Lock()
	s.loading++
	if authenticating {
		s.authenticating++
	}
	s.lock.Unlock()

	return func() {
		s.lock.Lock()
		s.loading--
		if authenticating {
			s.authenticating--
		}
		s.lock.Unlock()
	}
}

func (s *Store) clearQuietly() {
	if err := s.ClearAuth(); err != nil {
		log.Err(err).Msg("failed to clear session")
	}
}

func rejectedError(message, fallback string, cause error) *apiclient.Error {
	if message == "" {
		message = fallback
	}
	return &apiclient.Error{Kind: apiclient.KindRejected, Message: message, Err: cause}
}

func copyProfile(p *users.Profile) *users.Profile {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}
