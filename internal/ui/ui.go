package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/flix/internal/formatter"
	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/shared"
	"github.com/desertthunder/flix/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	LoadingView ViewState = iota
	CatalogView
	FavoritesView
	DetailView
	ConfirmView
	SignedOutView
	ErrorView
)

// Profile is the subset of [tasks.Profile] the TUI drives.
type Profile interface {
	Load(ctx context.Context) (tasks.View, error)
	ToggleFavorite(ctx context.Context, id string) (tasks.View, error)
	Delete(ctx context.Context, confirm tasks.Confirmer) (bool, error)
	View() tasks.View
}

var _ Profile = (*tasks.Profile)(nil)

// Model represents the TUI application state.
type Model struct {
	ctx           context.Context
	view          ViewState
	previous      ViewState
	profile       Profile
	updates       <-chan tasks.ProgressUpdate
	width         int
	height        int
	catalogList   list.Model
	favoritesList list.Model
	data          tasks.View
	selected      *models.Movie
	status        string
	err           error
	help          help.Model
	keys          keyMap
}

// NewModel creates a new TUI model over profile. updates may be nil; when set it should be the
// channel the profile publishes progress to.
func NewModel(ctx context.Context, profile Profile, updates <-chan tasks.ProgressUpdate) *Model {
	m := &Model{
		ctx:     ctx,
		view:    LoadingView,
		profile: profile,
		updates: updates,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.catalogList = newMovieList("Catalog")
	m.favoritesList = newMovieList("Favorites")
	return m
}

func newMovieList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetShowHelp(false)
	return l
}

// Init starts loading the profile.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForProgress())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.catalogList.SetSize(msg.Width-4, msg.Height-8)
		m.favoritesList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case CatalogView, FavoritesView:
			return m.handleListKeys(msg)
		case DetailView:
			return m.handleDetailKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case LoadingView, SignedOutView, ErrorView:
			return m.handleIdleKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProfileLoaded:
		res := msg.data.(viewResult)
		if res.err != nil && errors.Is(res.err, shared.ErrFavoriteBusy) && m.view != LoadingView {
			m.status = services.UserMessage(res.err)
			return m, nil
		}
		if res.err != nil {
			m.failed(res.err)
			return m, nil
		}
		m.err = nil
		m.status = ""
		m.view = CatalogView
		return m, m.refresh(res.view)

	case MsgFavoriteToggled:
		res := msg.data.(struct {
			id string
			viewResult
		})
		if res.err != nil {
			if m.signedOut(res.err) {
				m.view = SignedOutView
				return m, nil
			}
			m.status = services.UserMessage(res.err)
			return m, nil
		}
		m.status = ""
		// Toggles finish in any order; render the latest snapshot rather than this call's.
		return m, m.refresh(m.profile.View())

	case MsgProfileDeleted:
		res := msg.data.(struct {
			deleted bool
			err     error
		})
		switch {
		case res.err != nil:
			if m.signedOut(res.err) {
				m.view = SignedOutView
				return m, nil
			}
			m.view = m.previous
			m.status = services.UserMessage(res.err)
		case res.deleted:
			m.view = SignedOutView
			m.status = "Your profile was deleted."
		default:
			m.view = m.previous
		}
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		if m.view == LoadingView {
			m.status = update.Message
		}
		return m, m.waitForProgress()
	}
	return m, nil
}

// signedOut reports whether err ended the session.
func (m *Model) signedOut(err error) bool {
	return errors.Is(err, shared.ErrTornDown) || m.profile.View().State == tasks.LoggedOut
}

func (m *Model) failed(err error) {
	if m.signedOut(err) {
		m.view = SignedOutView
		m.status = services.UserMessage(err)
		return
	}
	m.err = err
	m.view = ErrorView
}

// refresh replaces list contents with v, keeping each list's cursor.
func (m *Model) refresh(v tasks.View) tea.Cmd {
	m.data = v
	return tea.Batch(
		m.catalogList.SetItems(movieItems(v.Catalog, v.Favorites)),
		m.favoritesList.SetItems(movieItems(v.Favorites, v.Favorites)),
	)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case LoadingView:
		return m.renderLoading()
	case CatalogView, FavoritesView:
		return m.renderList()
	case DetailView:
		return m.renderDetail()
	case ConfirmView:
		return m.renderConfirm()
	case SignedOutView:
		return m.renderSignedOut()
	case ErrorView:
		return m.renderError()
	default:
		return ""
	}
}

func (m *Model) activeList() *list.Model {
	if m.view == FavoritesView {
		return &m.favoritesList
	}
	return &m.catalogList
}

func (m *Model) selectedMovie() (models.Movie, bool) {
	item, ok := m.activeList().SelectedItem().(movieItem)
	if !ok {
		return models.Movie{}, false
	}
	return item.movie, true
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.activeList()
	if l.FilterState() == list.Filtering {
		var cmd tea.Cmd
		*l, cmd = l.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.tab):
		if m.view == CatalogView {
			m.view = FavoritesView
		} else {
			m.view = CatalogView
		}
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		if movie, ok := m.selectedMovie(); ok {
			return m, m.toggle(movie.ID)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if movie, ok := m.selectedMovie(); ok {
			m.selected = &movie
			m.previous = m.view
			m.view = DetailView
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		m.previous = m.view
		m.view = ConfirmView
		return m, nil
	case key.Matches(msg, m.keys.reload):
		m.status = ""
		return m, m.load()
	}

	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = m.previous
		m.selected = nil
		return m, nil
	case key.Matches(msg, m.keys.favorite):
		if m.selected != nil {
			return m, m.toggle(m.selected.ID)
		}
	}
	return m, nil
}

// handleConfirmKeys answers the delete prompt. Declining makes no call.
func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		m.status = "Deleting profile..."
		return m, m.remove()
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.quit):
		m.view = m.previous
		m.status = ""
		return m, nil
	}
	return m, nil
}

func (m *Model) handleIdleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case m.view == ErrorView && key.Matches(msg, m.keys.reload):
		m.err = nil
		m.view = LoadingView
		return m, m.load()
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case CatalogView:
		m.catalogList, cmd = m.catalogList.Update(msg)
	case FavoritesView:
		m.favoritesList, cmd = m.favoritesList.Update(msg)
	}
	return m, cmd
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		v, err := m.profile.Load(m.ctx)
		return profileLoadedMsg(v, err)
	}
}

func (m *Model) toggle(id string) tea.Cmd {
	return func() tea.Msg {
		v, err := m.profile.ToggleFavorite(m.ctx, id)
		return favoriteToggledMsg(id, v, err)
	}
}

// remove runs the deletion; the user has already answered the prompt.
func (m *Model) remove() tea.Cmd {
	return func() tea.Msg {
		confirmed := tasks.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
		deleted, err := m.profile.Delete(m.ctx, confirmed)
		return profileDeletedMsg(deleted, err)
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	if m.updates == nil {
		return nil
	}
	return func() tea.Msg {
		update, ok := <-m.updates
		if !ok {
			return nil
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) statusLine() string {
	if m.status == "" {
		return ""
	}
	return "\n" + styles.warn.Render(m.status)
}

func (m *Model) renderLoading() string {
	title := styles.title.Render("Loading profile")
	return fmt.Sprintf("%s\n%s", title, m.status)
}

func (m *Model) renderList() string {
	header := styles.title.Render(fmt.Sprintf("%s • %d favorites", m.data.User.Username, len(m.data.Favorites)))
	body := m.activeList().View()
	if m.view == FavoritesView && len(m.data.Favorites) == 0 {
		body = styles.help.Render("No favorites yet. Press tab for the catalog and f to add one.")
	}

	helpKeys := []key.Binding{m.keys.enter, m.keys.favorite, m.keys.tab, m.keys.remove, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s%s\n\n%s", header, body, m.statusLine(), helpView)
}

func (m *Model) renderDetail() string {
	if m.selected == nil {
		return ""
	}

	detail := formatter.MovieDetail(*m.selected)
	if m.data.User.HasFavorite(m.selected.ID) {
		detail += "\n" + styles.ok.Render("★ In your favorites")
	}

	helpKeys := []key.Binding{m.keys.favorite, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s%s\n\n%s", detail, m.statusLine(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.err.Render(tasks.DeletePrompt)
	info := fmt.Sprintf("\nUser: %s\nFavorites: %d\n", m.data.User.Username, len(m.data.Favorites))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, m.statusLine(), helpView)
}

func (m *Model) renderSignedOut() string {
	msg := m.status
	if msg == "" {
		msg = "You have been signed out."
	}
	return fmt.Sprintf("%s\n\n%s", styles.ok.Render(msg), styles.help.Render("Run `flix login` to sign in again. Press q to quit."))
}

func (m *Model) renderError() string {
	return styles.err.Render(fmt.Sprintf("Error: %s\n\nPress r to retry, q to quit", services.UserMessage(m.err)))
}
