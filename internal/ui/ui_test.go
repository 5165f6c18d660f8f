package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/tasks"
	tu "github.com/desertthunder/flix/internal/testing"
)

// fakeProfile is an in-memory [Profile].
type fakeProfile struct {
	mu        sync.Mutex
	view      tasks.View
	loadErr   error
	toggleErr error
	deletes   int
	confirmed bool
}

func newFakeProfile(favorites ...string) *fakeProfile {
	catalog := tu.Catalog()
	user := tu.User("alice", favorites...)
	return &fakeProfile{view: tasks.View{
		State:     tasks.Ready,
		User:      user,
		Catalog:   catalog,
		Favorites: tasks.Reconcile(catalog, user.FavoriteMovies),
	}}
}

func (f *fakeProfile) Load(ctx context.Context) (tasks.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return tasks.View{}, f.loadErr
	}
	return f.view, nil
}

func (f *fakeProfile) ToggleFavorite(ctx context.Context, id string) (tasks.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.toggleErr != nil {
		return tasks.View{}, f.toggleErr
	}
	if f.view.User.HasFavorite(id) {
		f.view.User = f.view.User.WithoutFavorite(id)
	} else {
		f.view.User = f.view.User.WithFavorite(id)
	}
	f.view.Favorites = tasks.Reconcile(f.view.Catalog, f.view.User.FavoriteMovies)
	return f.view, nil
}

func (f *fakeProfile) Delete(ctx context.Context, confirm tasks.Confirmer) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	ok, err := confirm.Confirm(ctx, tasks.DeletePrompt)
	f.confirmed = ok
	if err != nil || !ok {
		return false, err
	}
	f.view.State = tasks.LoggedOut
	return true, nil
}

func (f *fakeProfile) View() tasks.View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers msg and runs any resulting command once, feeding its message back.
func send(m *Model, msg tea.Msg) {
	_, cmd := m.Update(msg)
	if cmd == nil {
		return
	}
	if out, ok := cmd().(Msg); ok {
		m.Update(out)
	}
}

func loadedModel(t *testing.T, p *fakeProfile) *Model {
	t.Helper()

	m := NewModel(context.Background(), p, nil)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m.Update(m.load()())
	if m.view != CatalogView {
		t.Fatalf("expected catalog view, got %d", m.view)
	}
	return m
}

func TestModel(t *testing.T) {
	t.Run("load fills both lists", func(t *testing.T) {
		m := loadedModel(t, newFakeProfile("3"))

		if n := len(m.catalogList.Items()); n != 3 {
			t.Errorf("expected 3 catalog items, got %d", n)
		}
		if n := len(m.favoritesList.Items()); n != 1 {
			t.Errorf("expected 1 favorite, got %d", n)
		}
		if !strings.Contains(m.View(), "alice") {
			t.Error("expected username in header")
		}
	})

	t.Run("load failure shows the user message", func(t *testing.T) {
		p := newFakeProfile()
		p.loadErr = &services.NetworkError{Op: "get user", Err: errors.New("refused")}
		m := NewModel(context.Background(), p, nil)

		m.Update(m.load()())
		if m.view != ErrorView {
			t.Fatalf("expected error view, got %d", m.view)
		}
		if !strings.Contains(m.View(), services.GenericMessage) {
			t.Errorf("expected generic message, got %q", m.View())
		}

		p.loadErr = nil
		send(m, runes("r"))
		if m.view != CatalogView {
			t.Errorf("expected retry to load, got %d", m.view)
		}
	})

	t.Run("toggle favorite", func(t *testing.T) {
		p := newFakeProfile()
		m := loadedModel(t, p)

		send(m, runes("f"))
		if got := tu.IDs(m.data.Favorites); len(got) != 1 || got[0] != "1" {
			t.Fatalf("expected first movie favorited, got %v", got)
		}
		if !m.catalogList.Items()[0].(movieItem).favorite {
			t.Error("expected catalog item marked")
		}

		send(m, runes("f"))
		if len(m.data.Favorites) != 0 {
			t.Errorf("expected favorite removed, got %v", tu.IDs(m.data.Favorites))
		}
	})

	t.Run("busy toggle is reported", func(t *testing.T) {
		p := newFakeProfile()
		p.toggleErr = shared.ErrFavoriteBusy
		m := loadedModel(t, p)

		send(m, runes("f"))
		if m.status != services.BusyMessage {
			t.Errorf("expected busy message, got %q", m.status)
		}
		if m.view != CatalogView {
			t.Errorf("expected to stay on catalog, got %d", m.view)
		}
	})

	t.Run("reload during a pending change keeps the list", func(t *testing.T) {
		p := newFakeProfile("2")
		m := loadedModel(t, p)

		p.loadErr = shared.ErrFavoriteBusy
		send(m, runes("r"))
		if m.view != CatalogView {
			t.Errorf("expected to stay on catalog, got %d", m.view)
		}
		if m.status != services.BusyMessage {
			t.Errorf("expected busy message, got %q", m.status)
		}
	})

	t.Run("expired session signs out", func(t *testing.T) {
		p := newFakeProfile()
		m := loadedModel(t, p)

		p.view.State = tasks.LoggedOut
		p.toggleErr = shared.ErrInvalidSession
		send(m, runes("f"))
		if m.view != SignedOutView {
			t.Errorf("expected signed out view, got %d", m.view)
		}
	})

	t.Run("tab switches lists", func(t *testing.T) {
		m := loadedModel(t, newFakeProfile())

		m.Update(tea.KeyMsg{Type: tea.KeyTab})
		if m.view != FavoritesView {
			t.Fatalf("expected favorites view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "No favorites yet") {
			t.Error("expected empty favorites hint")
		}
	})

	t.Run("details", func(t *testing.T) {
		m := loadedModel(t, newFakeProfile())

		m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != DetailView || m.selected == nil {
			t.Fatalf("expected detail view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Jonathan Demme") {
			t.Errorf("expected director in detail, got %q", m.View())
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != CatalogView {
			t.Errorf("expected back to catalog, got %d", m.view)
		}
	})

	t.Run("declined delete makes no call", func(t *testing.T) {
		p := newFakeProfile()
		m := loadedModel(t, p)

		m.Update(runes("D"))
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %d", m.view)
		}
		send(m, runes("n"))
		if m.view != CatalogView || p.deletes != 0 {
			t.Errorf("expected catalog and no delete, got view %d deletes %d", m.view, p.deletes)
		}
	})

	t.Run("confirmed delete signs out", func(t *testing.T) {
		p := newFakeProfile()
		m := loadedModel(t, p)

		m.Update(runes("D"))
		send(m, runes("y"))
		if p.deletes != 1 || !p.confirmed {
			t.Errorf("expected one confirmed delete, got %d", p.deletes)
		}
		if m.view != SignedOutView {
			t.Errorf("expected signed out view, got %d", m.view)
		}
	})
}

func TestMovieItem(t *testing.T) {
	movies := tu.Catalog()
	items := movieItems(movies, movies[1:2])

	if items[0].(movieItem).favorite || !items[1].(movieItem).favorite {
		t.Error("expected only the second item marked")
	}
	if desc := items[1].(movieItem).Description(); desc != "Science Fiction • Christopher Nolan" {
		t.Errorf("unexpected description %q", desc)
	}
	if items[0].FilterValue() != movies[0].Title {
		t.Error("expected title as filter value")
	}
}
