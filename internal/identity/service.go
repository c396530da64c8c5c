package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"buyzo/internal/docstore"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// MinPasswordLength below which CreateAccount rejects the credential
	MinPasswordLength = 6

	// SessionTokenExpiration bounds how long a session token is honored
	SessionTokenExpiration = 24 * time.Hour

	credentialsCollection = "credentials"
)

// Claims represents the JWT claims on a session token
type Claims struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	jwt.RegisteredClaims
}

type credentialRecord struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	DisplayName  string    `json:"displayName"`
	Verified     bool      `json:"emailVerified"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Service implements Provider with credentials persisted through the
// document store and HS256 session tokens.
type Service struct {
	docs      docstore.Store
	jwtSecret string

	mu          sync.Mutex
	subscribers map[int]chan *Identity
	nextSub     int
}

// NewService creates a new identity Service
func NewService(docs docstore.Store, jwtSecret string) *Service {
	return &Service{
		docs:        docs,
		jwtSecret:   jwtSecret,
		subscribers: make(map[int]chan *Identity),
	}
}

// CreateAccount registers a new credential. The email must be unused and the
// password must meet the minimum length.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (*Identity, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if len(password) < MinPasswordLength {
		return nil, "", ErrWeakPassword
	}

	existing, err := s.findByEmail(ctx, email)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check existing credential: %w", err)
	}
	if existing != nil {
		return nil, "", ErrEmailInUse
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	uid := uuid.New().String()
	cred := credentialRecord{
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
	}

	rec, err := docstore.Encode(cred)
	if err != nil {
		return nil, "", err
	}

	if err := s.docs.Set(ctx, credentialsCollection, uid, rec, false); err != nil {
		return nil, "", fmt.Errorf("failed to store credential: %w", err)
	}

	ident := &Identity{UID: uid, Email: email}

	token, err := s.issueToken(ident)
	if err != nil {
		return nil, "", err
	}

	s.publish(ident)
	return ident, token, nil
}

// Authenticate verifies a credential and returns the identity with a fresh
// session token
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Identity, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	doc, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find credential: %w", err)
	}

	cred := credentialRecord{}
	if err := docstore.Decode(doc.Data, &cred); err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	ident := &Identity{
		UID:         doc.ID,
		Email:       cred.Email,
		Verified:    cred.Verified,
		DisplayName: cred.DisplayName,
	}

	token, err := s.issueToken(ident)
	if err != nil {
		return nil, "", err
	}

	s.publish(ident)
	return ident, token, nil
}

// SignOut publishes a nil identity to all subscribers
func (s *Service) SignOut(ctx context.Context) error {
	s.publish(nil)
	return nil
}

// Verify checks a session token and returns the identity it carries
func (s *Service) Verify(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &Identity{
		UID:         claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
	}, nil
}

// Subscribe registers an identity-change listener
func (s *Service) Subscribe() (<-chan *Identity, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++

	ch := make(chan *Identity, 16)
	s.subscribers[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}

	return ch, unsubscribe
}

func (s *Service) publish(ident *Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case ch <- ident:
		default:
			// Slow subscriber; drop rather than block the credential path
		}
	}
}

func (s *Service) issueToken(ident *Identity) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ident.UID,
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*docstore.Doc, error) {
	docs, err := s.docs.QueryCollection(ctx, credentialsCollection, docstore.Query{
		Where: []docstore.Filter{{Field: "email", Value: email}},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}

	if len(docs) == 0 {
		return nil, docstore.ErrNotFound
	}

	return &docs[0], nil
}
