package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/layer-3/rangda/core"
	"github.com/layer-3/rangda/internal/pwhash"
	"github.com/layer-3/rangda/internal/solana"
	"github.com/layer-3/rangda/ports"
)

// accessTokenBytes is the entropy of an opaque access token.
const accessTokenBytes = 32

// revocationTTL bounds how long a revocation entry is kept. The device row
// is removed on logout, so the entry only shields caches on other instances.
const revocationTTL = 30 * 24 * time.Hour

// Config carries the orchestrator's tunables.
type Config struct {
	// ServerName is rendered into every challenge message.
	ServerName string

	// NonceTTL is the maximum age at which a consumed nonce is accepted.
	NonceTTL time.Duration

	// AllowWalletLogin gates challenge issuance and wallet login.
	AllowWalletLogin bool

	// AppserviceTokens are "token:namespace" pairs; the namespace is a
	// localpart prefix the token is allowed to log in as.
	AppserviceTokens []string
}

// LoginRequest is a decoded login attempt. Which fields matter depends on
// the method; the HTTP layer resolves Method once from the request type
// string before anything else looks at the body.
type LoginRequest struct {
	Method core.LoginMethod

	// Password login.
	Localpart string
	Password  string

	// Token login.
	Token string

	// Application-service login.
	AppserviceToken string

	// Wallet-signature login.
	Address   string
	Signature string
	Nonce     string

	// Optional device fields, honored by every method.
	DeviceID                 string
	InitialDeviceDisplayName string
}

// AuthService orchestrates challenge issuance, login verification, account
// provisioning and session credential issuance.
type AuthService struct {
	cfg       Config
	nonces    ports.NonceStore
	accounts  ports.AccountStore
	tokens    ports.TokenStore
	tokenizer ports.Tokenizer // nil disables token login
	eventPub  ports.EventPublisher

	appservices map[string]string // token -> namespace prefix
	now         func() time.Time
}

// NewAuthService creates a new authentication service. tokenizer may be nil
// when token login is not configured.
func NewAuthService(
	cfg Config,
	nonces ports.NonceStore,
	accounts ports.AccountStore,
	tokens ports.TokenStore,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
) *AuthService {
	appservices := make(map[string]string, len(cfg.AppserviceTokens))
	for _, entry := range cfg.AppserviceTokens {
		token, namespace, _ := strings.Cut(entry, ":")
		appservices[token] = namespace
	}

	return &AuthService{
		cfg:         cfg,
		nonces:      nonces,
		accounts:    accounts,
		tokens:      tokens,
		tokenizer:   tokenizer,
		eventPub:    eventPub,
		appservices: appservices,
		now:         time.Now,
	}
}

// LoginTypes lists the login methods this deployment accepts, in the order
// they are advertised to clients.
func (s *AuthService) LoginTypes() []string {
	types := []string{core.TypePassword, core.TypeApplicationService}
	if s.tokenizer != nil {
		types = append(types, core.TypeToken)
	}
	if s.cfg.AllowWalletLogin {
		types = append(types, core.TypeWalletSignature)
	}
	return types
}

// RequestChallenge validates the wallet address and issues a single-use
// challenge for it. The client must sign the returned message exactly.
func (s *AuthService) RequestChallenge(address string) (core.Challenge, error) {
	if !s.cfg.AllowWalletLogin {
		return core.Challenge{}, core.ErrFeatureDisabled
	}

	if _, err := solana.DecodePublicKey(address); err != nil {
		return core.Challenge{}, err
	}

	nonce, err := s.nonces.Generate()
	if err != nil {
		return core.Challenge{}, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return core.Challenge{
		Nonce:     nonce,
		Message:   core.SignMessage(s.cfg.ServerName, nonce),
		ExpiresIn: int64(s.cfg.NonceTTL.Seconds()),
		IssuedAt:  s.now(),
	}, nil
}

// VerifyWalletLogin consumes the nonce, checks its age, rebuilds the
// challenge message and verifies the signature, then derives the identity.
//
// The nonce is consumed before the expiry check and before verification:
// whatever happens next, that nonce can never be presented again. A client
// that loses the race against the TTL pays one extra challenge round-trip.
func (s *AuthService) VerifyWalletLogin(address, signature, nonce string) (core.Identity, error) {
	if !s.cfg.AllowWalletLogin {
		return core.Identity{}, core.ErrFeatureDisabled
	}

	created, err := s.nonces.Consume(nonce)
	if err != nil {
		return core.Identity{}, err
	}
	if s.now().Sub(created) > s.cfg.NonceTTL {
		return core.Identity{}, core.ErrNonceExpired
	}

	// Verification and rendering run outside the store's lock; both are
	// pure CPU work.
	message := core.SignMessage(s.cfg.ServerName, nonce)
	rawKey, err := solana.Verify(address, signature, message)
	if err != nil {
		return core.Identity{}, err
	}

	return core.DeriveIdentity(rawKey, address), nil
}

// Login authenticates a request with whichever method it carries and
// issues a device session on success.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (core.Session, error) {
	var userID string

	switch req.Method {
	case core.MethodPassword:
		uid, err := s.passwordLogin(ctx, req.Localpart, req.Password)
		if err != nil {
			return core.Session{}, err
		}
		userID = uid

	case core.MethodToken:
		uid, err := s.tokenLogin(ctx, req.Token)
		if err != nil {
			return core.Session{}, err
		}
		userID = uid

	case core.MethodApplicationService:
		uid, err := s.appserviceLogin(ctx, req.AppserviceToken, req.Localpart)
		if err != nil {
			return core.Session{}, err
		}
		userID = uid

	case core.MethodWalletSignature:
		uid, err := s.walletLogin(ctx, req.Address, req.Signature, req.Nonce)
		if err != nil {
			return core.Session{}, err
		}
		userID = uid

	default:
		return core.Session{}, core.ErrUnknownLoginType
	}

	return s.issueSession(ctx, userID, req.DeviceID, req.InitialDeviceDisplayName)
}

func (s *AuthService) passwordLogin(ctx context.Context, localpart, password string) (string, error) {
	localpart = strings.ToLower(localpart)
	if !validLocalpart(localpart) {
		return "", core.ErrInvalidLocalpart
	}

	hash, err := s.accounts.PasswordHash(ctx, localpart)
	if err != nil {
		if err == core.ErrUserNotFound {
			// Same rejection as a wrong password so the response does not
			// reveal which accounts exist.
			return "", core.ErrBadCredentials
		}
		return "", fmt.Errorf("failed to load password hash: %w", err)
	}

	if hash == "" {
		return "", core.ErrUserDeactivated
	}

	ok, err := pwhash.Verify(hash, password)
	if err != nil || !ok {
		return "", core.ErrBadCredentials
	}

	return localpart, nil
}

func (s *AuthService) tokenLogin(ctx context.Context, token string) (string, error) {
	if s.tokenizer == nil {
		return "", core.ErrUnknownLoginType
	}

	localpart, err := s.tokenizer.LocalpartFromToken(token)
	if err != nil {
		return "", err
	}
	if !validLocalpart(localpart) {
		return "", core.ErrInvalidLocalpart
	}

	exists, err := s.accounts.UserExists(ctx, localpart)
	if err != nil {
		return "", fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		return "", core.ErrUserNotFound
	}

	return localpart, nil
}

func (s *AuthService) appserviceLogin(ctx context.Context, token, localpart string) (string, error) {
	if token == "" {
		return "", core.ErrMissingAppservice
	}

	namespace, ok := s.appservices[token]
	if !ok {
		return "", core.ErrMissingAppservice
	}

	localpart = strings.ToLower(localpart)
	if !validLocalpart(localpart) {
		return "", core.ErrInvalidLocalpart
	}
	if namespace != "" && !strings.HasPrefix(localpart, namespace) {
		return "", core.ErrNotInNamespace
	}

	exists, err := s.accounts.UserExists(ctx, localpart)
	if err != nil {
		return "", fmt.Errorf("failed to check user: %w", err)
	}
	if !exists {
		// Appservices provision their own users (passwordless).
		if err := s.accounts.CreateUser(ctx, localpart, ""); err != nil {
			return "", fmt.Errorf("failed to create user: %w", err)
		}
	}

	return localpart, nil
}

// walletLogin verifies the signed challenge and provisions the account on
// first login: no password, display name set to the base58 address so users
// see the familiar wallet form.
func (s *AuthService) walletLogin(ctx context.Context, address, signature, nonce string) (string, error) {
	identity, err := s.VerifyWalletLogin(address, signature, nonce)
	if err != nil {
		return "", err
	}

	exists, err := s.accounts.UserExists(ctx, identity.CanonicalID)
	if err != nil {
		return "", fmt.Errorf("failed to check user: %w", err)
	}

	if !exists {
		if err := s.accounts.CreateUser(ctx, identity.CanonicalID, ""); err != nil {
			return "", fmt.Errorf("failed to create user: %w", err)
		}
		if err := s.accounts.SetDisplayName(ctx, identity.CanonicalID, identity.DisplayLabel); err != nil {
			return "", fmt.Errorf("failed to set display name: %w", err)
		}

		if s.eventPub != nil {
			if err := s.eventPub.PublishRegistered(ctx, identity.CanonicalID, identity.DisplayLabel); err != nil {
				// The account is created; the notification is best-effort.
				fmt.Printf("Warning: failed to publish registration event: %v\n", err)
			}
		}
	}

	return identity.CanonicalID, nil
}

// issueSession creates or reuses a device and binds a fresh access token
// to it. Reusing a known device id replaces its token, invalidating the
// previous one.
func (s *AuthService) issueSession(ctx context.Context, userID, deviceID, deviceDisplayName string) (core.Session, error) {
	token, err := randomToken()
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	deviceExists := false
	if deviceID != "" {
		deviceExists, err = s.accounts.DeviceExists(ctx, userID, deviceID)
		if err != nil {
			return core.Session{}, fmt.Errorf("failed to check device: %w", err)
		}
	} else {
		deviceID = uuid.New().String()
	}

	if deviceExists {
		err = s.accounts.SetDeviceToken(ctx, userID, deviceID, token)
	} else {
		err = s.accounts.CreateDevice(ctx, userID, deviceID, token, deviceDisplayName)
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to store device: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLoggedIn(ctx, userID, deviceID); err != nil {
			fmt.Printf("Warning: failed to publish login event: %v\n", err)
		}
	}

	return core.Session{
		UserID:      userID,
		DeviceID:    deviceID,
		AccessToken: token,
	}, nil
}

// ValidateAccessToken resolves a bearer token to its session, rejecting
// revoked and unknown tokens.
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (core.Session, error) {
	revoked, err := s.tokens.IsTokenInvalidated(ctx, token)
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return core.Session{}, core.ErrTokenRevoked
	}

	userID, deviceID, err := s.accounts.UserByToken(ctx, token)
	if err != nil {
		return core.Session{}, err
	}

	return core.Session{UserID: userID, DeviceID: deviceID, AccessToken: token}, nil
}

// Logout removes the session's device and revokes its access token.
func (s *AuthService) Logout(ctx context.Context, session core.Session) error {
	if err := s.tokens.InvalidateToken(ctx, session.AccessToken, revocationTTL); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if err := s.accounts.RemoveDevice(ctx, session.UserID, session.DeviceID); err != nil {
		return fmt.Errorf("failed to remove device: %w", err)
	}

	if s.eventPub != nil {
		if err := s.eventPub.PublishLoggedOut(ctx, session.UserID, session.DeviceID); err != nil {
			fmt.Printf("Warning: failed to publish logout event: %v\n", err)
		}
	}

	return nil
}

// LogoutAll removes every device of the session's user. Tokens of the other
// devices become unresolvable once their rows are gone, so only the
// presented token needs an explicit revocation entry.
func (s *AuthService) LogoutAll(ctx context.Context, session core.Session) error {
	deviceIDs, err := s.accounts.DeviceIDs(ctx, session.UserID)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}

	if err := s.tokens.InvalidateToken(ctx, session.AccessToken, revocationTTL); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	for _, deviceID := range deviceIDs {
		if err := s.accounts.RemoveDevice(ctx, session.UserID, deviceID); err != nil {
			return fmt.Errorf("failed to remove device %s: %w", deviceID, err)
		}
		if s.eventPub != nil {
			if err := s.eventPub.PublishLoggedOut(ctx, session.UserID, deviceID); err != nil {
				fmt.Printf("Warning: failed to publish logout event: %v\n", err)
			}
		}
	}

	return nil
}

// validLocalpart reports whether s fits the identifier grammar: non-empty
// lowercase a-z, 0-9 and ._=-/ only.
func validLocalpart(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '=' || r == '-' || r == '/':
		default:
			return false
		}
	}
	return true
}

func randomToken() (string, error) {
	buf := make([]byte, accessTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
