package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/sony/gobreaker"

	"github.com/TechSupportz/tasky-server/models"
)

// UserDirectory resolves users: the viewer of the current flow, the full
// listing, and username lookup.
type UserDirectory interface {
	CurrentUser(ctx context.Context) (models.User, error)
	AllUsers(ctx context.Context) ([]models.User, error)

	// FindByUsername returns ErrUsernameNotFound when no user matches.
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// UserService is the in-memory UserDirectory, seeded the way the client
// mock data was.
type UserService struct {
	mu            sync.RWMutex
	users         []models.User
	currentUserID int64
}

func NewUserService(users []models.User, currentUserID int64) *UserService {
	return &UserService{users: users, currentUserID: currentUserID}
}

func (s *UserService) CurrentUser(ctx context.Context) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == s.currentUserID {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("current user %d not found in directory", s.currentUserID)
}

func (s *UserService) AllUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUsernameNotFound
}

// scopedDirectory overrides CurrentUser with a request-scoped identity
// resolved from the bearer token, delegating everything else.
type scopedDirectory struct {
	UserDirectory
	current models.User
}

func (d scopedDirectory) CurrentUser(ctx context.Context) (models.User, error) {
	return d.current, nil
}

// WithCurrentUser returns a directory whose CurrentUser is fixed to user.
func WithCurrentUser(base UserDirectory, user models.User) UserDirectory {
	return scopedDirectory{UserDirectory: base, current: user}
}

// RemoteUserDirectory reads users from a sibling users service over HTTP,
// guarded by a circuit breaker.
type RemoteUserDirectory struct {
	BaseURL    string
	HTTPClient *http.Client
	Breaker    *gobreaker.CircuitBreaker
}

func NewRemoteUserDirectory(baseURL string, client *http.Client, breaker *gobreaker.CircuitBreaker) *RemoteUserDirectory {
	return &RemoteUserDirectory{BaseURL: baseURL, HTTPClient: client, Breaker: breaker}
}

// CurrentUser has no meaning without a request identity; callers wrap the
// directory with WithCurrentUser before handing it to a page session.
func (d *RemoteUserDirectory) CurrentUser(ctx context.Context) (models.User, error) {
	return models.User{}, fmt.Errorf("remote directory has no request identity")
}

func (d *RemoteUserDirectory) AllUsers(ctx context.Context) ([]models.User, error) {
	result, err := d.Breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+"/api/users", nil)
		if err != nil {
			return nil, err
		}
		resp, err := d.HTTPClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("users service returned status %d", resp.StatusCode)
		}

		var users []models.User
		if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
			return nil, fmt.Errorf("failed to decode users response: %w", err)
		}
		return users, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users from directory: %w", err)
	}
	return result.([]models.User), nil
}

func (d *RemoteUserDirectory) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := d.AllUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, ErrUsernameNotFound
}
