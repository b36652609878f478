package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"lendit/internal/models"
	"lendit/internal/redisclient"
	"lendit/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.NewWithDB(sqlx.NewDb(db, "postgres")), mock
}

type fakeSessions struct {
	sessions  map[string]int64
	next      int
	createErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]int64{}}
}

func (f *fakeSessions) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	f.next++
	token := fmt.Sprintf("token-%d", f.next)
	f.sessions[token] = userID
	return token, nil
}

func (f *fakeSessions) GetSession(ctx context.Context, token string) (int64, error) {
	userID, ok := f.sessions[token]
	if !ok {
		return 0, redisclient.ErrSessionNotFound
	}
	return userID, nil
}

func (f *fakeSessions) DeleteSession(ctx context.Context, token string) error {
	delete(f.sessions, token)
	return nil
}

type fakePublisher struct {
	registered []*models.UserRegisteredEvent
	loggedIn   []*models.UserLoggedInEvent
	listed     []*models.ProductListedEvent
	err        error
}

func (f *fakePublisher) PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error {
	f.registered = append(f.registered, event)
	return f.err
}

func (f *fakePublisher) PublishUserLoggedIn(ctx context.Context, event *models.UserLoggedInEvent) error {
	f.loggedIn = append(f.loggedIn, event)
	return f.err
}

func (f *fakePublisher) PublishProductListed(ctx context.Context, event *models.ProductListedEvent) error {
	f.listed = append(f.listed, event)
	return f.err
}

var errBoom = errors.New("boom")
