package tasks

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
	tu "github.com/desertthunder/flix/internal/testing"
)

// fakeGateway is an in-memory [Gateway] that counts calls.
//
// When gate is set, favorite mutations signal entered and then wait for gate before answering.
type fakeGateway struct {
	mu      sync.Mutex
	user    models.User
	catalog []models.Movie
	calls   map[string]int

	getUserErr, listErr, editErr, deleteErr, favErr error

	gate    chan struct{}
	entered chan string

	// blockUser makes GetUser wait until it is closed, ignoring ctx. blockDelete does the same for DeleteUser.
	blockUser   chan struct{}
	blockDelete chan struct{}
}

func newFakeGateway(favorites ...string) *fakeGateway {
	return &fakeGateway{
		user:    tu.User("alice", favorites...),
		catalog: tu.Catalog(),
		calls:   map[string]int{},
	}
}

func (f *fakeGateway) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeGateway) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeGateway) GetUser(ctx context.Context) (*models.User, error) {
	f.record("GetUser")
	if f.blockUser != nil {
		<-f.blockUser
	}
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.user
	return &u, nil
}

func (f *fakeGateway) ListMovies(ctx context.Context) ([]models.Movie, error) {
	f.record("ListMovies")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.catalog, nil
}

func (f *fakeGateway) EditUser(ctx context.Context, details models.UserDetails) (*models.User, error) {
	f.record("EditUser")
	if f.editErr != nil {
		return nil, f.editErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if details.Username != "" {
		f.user.Username = details.Username
	}
	if details.Email != "" {
		f.user.Email = details.Email
	}
	u := f.user
	return &u, nil
}

func (f *fakeGateway) DeleteUser(ctx context.Context) (*models.Confirmation, error) {
	f.record("DeleteUser")
	if f.blockDelete != nil {
		<-f.blockDelete
	}
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &models.Confirmation{Message: "alice was deleted."}, nil
}

func (f *fakeGateway) AddFavorite(ctx context.Context, id string) (*models.User, error) {
	return f.favorite(ctx, "AddFavorite", id)
}

func (f *fakeGateway) RemoveFavorite(ctx context.Context, id string) (*models.User, error) {
	return f.favorite(ctx, "RemoveFavorite", id)
}

func (f *fakeGateway) favorite(ctx context.Context, name, id string) (*models.User, error) {
	f.record(name)
	if f.entered != nil {
		f.entered <- id
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.favErr != nil {
		return nil, f.favErr
	}
	return nil, nil
}

type recordingCache struct {
	mu     sync.Mutex
	movies []models.Movie
}

func (c *recordingCache) ReplaceAll(movies []models.Movie) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.movies = movies
	return nil
}

func signedInStore(t *testing.T) *session.Store {
	t.Helper()
	st, err := session.NewStore(session.NewMemoryBackend())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := st.SetSession("abc123", "alice"); err != nil {
		t.Fatalf("failed to set session: %v", err)
	}
	return st
}

func newTestProfile(t *testing.T, gw Gateway, st *session.Store, progress chan<- ProgressUpdate) *Profile {
	t.Helper()
	p := NewProfile(ProfileOpts{
		Gateway:  gw,
		Session:  st,
		Logger:   shared.NewLogger(io.Discard),
		Progress: progress,
	})
	t.Cleanup(p.Close)
	return p
}

// readyProfile returns a loaded profile over gw.
func readyProfile(t *testing.T, gw *fakeGateway) (*Profile, *session.Store) {
	t.Helper()
	st := signedInStore(t)
	p := newTestProfile(t, gw, st, nil)
	if _, err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return p, st
}
