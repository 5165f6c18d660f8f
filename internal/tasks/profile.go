package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/services"
	"github.com/desertthunder/flix/internal/session"
	"github.com/desertthunder/flix/internal/shared"
)

// State is a [Profile]'s lifecycle state.
type State int

const (
	Uninitialized State = iota
	LoadingUser
	LoadingCatalog
	Ready
	Updating
	Deleting
	LoggedOut
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case LoadingUser:
		return "loading_user"
	case LoadingCatalog:
		return "loading_catalog"
	case Ready:
		return "ready"
	case Updating:
		return "updating"
	case Deleting:
		return "deleting"
	case LoggedOut:
		return "logged_out"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Gateway is the subset of the movie API a [Profile] needs.
type Gateway interface {
	GetUser(ctx context.Context) (*models.User, error)
	ListMovies(ctx context.Context) ([]models.Movie, error)
	EditUser(ctx context.Context, details models.UserDetails) (*models.User, error)
	DeleteUser(ctx context.Context) (*models.Confirmation, error)
	AddFavorite(ctx context.Context, id string) (*models.User, error)
	RemoveFavorite(ctx context.Context, id string) (*models.User, error)
}

// CatalogCache receives every freshly loaded catalog. repositories.MovieRepository implements it.
type CatalogCache interface {
	ReplaceAll(movies []models.Movie) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to [Confirmer].
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// DeletePrompt is the question put to the [Confirmer] before a profile is deleted.
const DeletePrompt = "Are you sure you want to delete your profile? This cannot be undone."

// View is a snapshot of a [Profile]. Slices are copies and safe to keep.
type View struct {
	State     State
	User      models.User
	Catalog   []models.Movie
	Favorites []models.Movie
}

// ProfileOpts configures a [Profile].
type ProfileOpts struct {
	Gateway  Gateway
	Session  *session.Store
	Logger   *log.Logger
	Progress chan<- ProgressUpdate
	Cache    CatalogCache
}

// Profile owns the signed-in user's record, the catalog and the derived favorites view.
//
// All methods are safe for concurrent use. State changes are published to the optional progress channel.
type Profile struct {
	gateway  Gateway
	session  *session.Store
	logger   *log.Logger
	progress chan<- ProgressUpdate
	cache    CatalogCache

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	state     State
	closed    bool
	user      models.User
	catalog   []models.Movie
	favorites []models.Movie
	inflight  map[string]struct{}
}

// NewProfile creates an [Uninitialized] profile.
func NewProfile(opts ProfileOpts) *Profile {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Profile{
		gateway:   opts.Gateway,
		session:   opts.Session,
		logger:    shared.WithLogger(opts.Logger, "component", "profile"),
		progress:  opts.Progress,
		cache:     opts.Cache,
		ctx:       ctx,
		cancel:    cancel,
		catalog:   []models.Movie{},
		favorites: []models.Movie{},
		inflight:  make(map[string]struct{}),
	}
}

// State returns the current lifecycle state.
func (p *Profile) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// View returns a snapshot of the profile.
func (p *Profile) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

func (p *Profile) snapshot() View {
	user := p.user
	user.FavoriteMovies = slices.Clone(user.FavoriteMovies)
	return View{
		State:     p.state,
		User:      user,
		Catalog:   slices.Clone(p.catalog),
		Favorites: slices.Clone(p.favorites),
	}
}

// Close tears the profile down. Calls in flight are cancelled and their responses discarded.
func (p *Profile) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.cancel()
}

// bind derives a context cancelled by either ctx or [Profile.Close].
func (p *Profile) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(p.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// begin checks that the profile is open, is in one of allowed and moves it to next.
// A next of -1 keeps the current state.
func (p *Profile) begin(next State, allowed ...State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.beginLocked(next, allowed...)
}

// beginSettled is [Profile.begin] that also refuses while any favorite change is in flight.
func (p *Profile) beginSettled(next State, allowed ...State) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.closed && len(p.inflight) > 0 {
		return fmt.Errorf("%w: %d favorite changes pending", shared.ErrFavoriteBusy, len(p.inflight))
	}
	return p.beginLocked(next, allowed...)
}

func (p *Profile) beginLocked(next State, allowed ...State) error {
	if p.closed {
		return shared.ErrTornDown
	}
	if !slices.Contains(allowed, p.state) {
		return fmt.Errorf("%w: cannot leave %s", shared.ErrInvalidState, p.state)
	}
	if next >= 0 {
		p.state = next
	}
	return nil
}

// IsSessionError reports whether err means the held session can no longer be used.
func IsSessionError(err error) bool {
	if errors.Is(err, shared.ErrInvalidSession) {
		return true
	}

	var authErr *services.AuthError
	if errors.As(err, &authErr) {
		return false
	}

	var apiErr *services.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// fail records err. Session errors sign the user out; otherwise the state becomes fallback.
// A negative fallback leaves the state alone. Errors arriving after Close are replaced by [shared.ErrTornDown].
func (p *Profile) fail(op string, err error, fallback State) error {
	p.mu.Lock()

	if p.closed {
		p.mu.Unlock()
		p.logger.Debug("discarding late failure", "op", op, "error", err)
		return shared.ErrTornDown
	}

	if IsSessionError(err) {
		p.signOutLocked()
		p.mu.Unlock()

		p.logger.Warn("session rejected", "op", op, "error", err)
		sendProgress(p.progress, signedOutUpdate())
		return err
	}

	if fallback >= 0 {
		p.state = fallback
	}
	state := p.state
	p.mu.Unlock()

	p.logger.Error("operation failed", "op", op, "state", state, "error", err)
	if fallback == Failed {
		sendProgress(p.progress, loadFailedUpdate(state, err))
	}
	return err
}

// signOutLocked clears the session and the owned data. p.mu must be held.
func (p *Profile) signOutLocked() {
	if p.session != nil {
		if err := p.session.Clear(); err != nil {
			p.logger.Error("failed to clear session", "error", err)
		}
	}
	p.state = LoggedOut
	p.user = models.User{}
	p.catalog = []models.Movie{}
	p.favorites = []models.Movie{}
}

// Load fetches the user then the catalog and reconciles the favorites view.
//
// Allowed from [Uninitialized], [Failed] (retry) and [Ready] (refresh). Refused with
// [shared.ErrFavoriteBusy] while a favorite change is in flight.
func (p *Profile) Load(ctx context.Context) (View, error) {
	if err := p.beginSettled(LoadingUser, Uninitialized, Failed, Ready); err != nil {
		return View{}, err
	}

	ctx, done := p.bind(ctx)
	defer done()

	username := ""
	if p.session != nil {
		username, _ = p.session.Username()
	}
	sendProgress(p.progress, loadingUserUpdate(username))

	user, err := p.gateway.GetUser(ctx)
	if err != nil {
		return View{}, p.fail("load user", err, Failed)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return View{}, shared.ErrTornDown
	}
	p.state = LoadingCatalog
	p.user = *user
	p.mu.Unlock()
	sendProgress(p.progress, loadingCatalogUpdate())

	catalog, err := p.gateway.ListMovies(ctx)
	if err != nil {
		return View{}, p.fail("load catalog", err, Failed)
	}
	if catalog == nil {
		catalog = []models.Movie{}
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return View{}, shared.ErrTornDown
	}
	p.catalog = catalog
	p.favorites = Reconcile(catalog, p.user.FavoriteMovies)
	p.state = Ready
	v := p.snapshot()
	p.mu.Unlock()

	p.logger.Info("profile loaded", "username", v.User.Username, "movies", len(v.Catalog), "favorites", len(v.Favorites))
	sendProgress(p.progress, reconciledUpdate(v))

	if p.cache != nil {
		if err := p.cache.ReplaceAll(catalog); err != nil {
			p.logger.Warn("failed to cache catalog", "error", err)
		}
	}
	return v, nil
}

// AddFavorite adds id to the user's favorites and re-reconciles once the backend confirms.
func (p *Profile) AddFavorite(ctx context.Context, id string) (View, error) {
	return p.mutateFavorite(ctx, id, true)
}

// RemoveFavorite removes id from the user's favorites and re-reconciles once the backend confirms.
func (p *Profile) RemoveFavorite(ctx context.Context, id string) (View, error) {
	return p.mutateFavorite(ctx, id, false)
}

// ToggleFavorite adds id when it is not a favorite and removes it otherwise.
func (p *Profile) ToggleFavorite(ctx context.Context, id string) (View, error) {
	p.mu.Lock()
	add := !p.user.HasFavorite(id)
	p.mu.Unlock()
	return p.mutateFavorite(ctx, id, add)
}

// mutateFavorite runs one add or remove. A second call for an id already in flight is rejected
// with [shared.ErrFavoriteBusy] before any request is made.
func (p *Profile) mutateFavorite(ctx context.Context, id string, add bool) (View, error) {
	op, phase := "remove favorite", RemoveFavorite
	if add {
		op, phase = "add favorite", AddFavorite
	}

	if id == "" {
		return View{}, fmt.Errorf("%w: movie id is required", shared.ErrInvalidInput)
	}

	p.mu.Lock()
	switch {
	case p.closed:
		p.mu.Unlock()
		return View{}, shared.ErrTornDown
	case p.state != Ready:
		state := p.state
		p.mu.Unlock()
		return View{}, fmt.Errorf("%w: cannot %s while %s", shared.ErrInvalidState, op, state)
	}
	if _, busy := p.inflight[id]; busy {
		p.mu.Unlock()
		p.logger.Debug("rejecting concurrent mutation", "op", op, "movie", id)
		return View{}, fmt.Errorf("%w: %s", shared.ErrFavoriteBusy, id)
	}
	p.inflight[id] = struct{}{}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.inflight, id)
		p.mu.Unlock()
	}()

	ctx, done := p.bind(ctx)
	defer done()

	var (
		echo *models.User
		err  error
	)
	if add {
		echo, err = p.gateway.AddFavorite(ctx, id)
	} else {
		echo, err = p.gateway.RemoveFavorite(ctx, id)
	}
	if err != nil {
		return View{}, p.fail(op, err, -1)
	}

	p.mu.Lock()
	if p.closed || p.state == LoggedOut {
		p.mu.Unlock()
		return View{}, shared.ErrTornDown
	}
	if add {
		p.user = p.user.WithFavorite(id)
	} else {
		p.user = p.user.WithoutFavorite(id)
	}
	p.favorites = Reconcile(p.catalog, p.user.FavoriteMovies)
	v := p.snapshot()
	p.mu.Unlock()

	if echo != nil && len(echo.FavoriteMovies) != len(v.User.FavoriteMovies) {
		p.logger.Debug("server favorites differ from local set", "movie", id, "server", len(echo.FavoriteMovies), "local", len(v.User.FavoriteMovies))
	}
	sendProgress(p.progress, favoriteUpdate(phase, id, v))
	return v, nil
}

// Update edits the profile. A changed username is written through to the session; the token is kept.
// Like [Profile.Load] it is refused while a favorite change is in flight.
func (p *Profile) Update(ctx context.Context, details models.UserDetails) (View, error) {
	if err := p.beginSettled(Updating, Ready); err != nil {
		return View{}, err
	}
	sendProgress(p.progress, updatingProfileUpdate(Updating, nil))

	ctx, done := p.bind(ctx)
	defer done()

	user, err := p.gateway.EditUser(ctx, details)
	if err != nil {
		return View{}, p.fail("update profile", err, Ready)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return View{}, shared.ErrTornDown
	}

	updated := *user
	if updated.Username == "" {
		updated.Username = p.user.Username
		if details.Username != "" {
			updated.Username = details.Username
		}
	}
	previous := p.user.Username
	p.user = updated
	p.favorites = Reconcile(p.catalog, p.user.FavoriteMovies)
	p.state = Ready

	var writeErr error
	if p.session != nil && updated.Username != previous {
		if token, ok := p.session.Token(); ok {
			writeErr = p.session.SetSession(token, updated.Username)
		}
	}
	v := p.snapshot()
	p.mu.Unlock()

	if writeErr != nil {
		p.logger.Error("failed to store new username", "username", updated.Username, "error", writeErr)
		return v, fmt.Errorf("profile updated but session not saved: %w", writeErr)
	}

	sendProgress(p.progress, updatingProfileUpdate(Ready, &v))
	return v, nil
}

// Delete removes the account after confirm approves it.
//
// A declined confirmation leaves the profile [Ready], sends nothing and returns false. On success the
// session is cleared, the profile is [LoggedOut] and true is returned so the caller can navigate away.
func (p *Profile) Delete(ctx context.Context, confirm Confirmer) (bool, error) {
	if confirm == nil {
		return false, fmt.Errorf("%w: a confirmer is required to delete a profile", shared.ErrInvalidInput)
	}
	if err := p.begin(-1, Ready); err != nil {
		return false, err
	}

	ok, err := confirm.Confirm(ctx, DeletePrompt)
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		p.logger.Info("profile deletion declined")
		return false, nil
	}

	if err := p.begin(Deleting, Ready); err != nil {
		return false, err
	}
	sendProgress(p.progress, deletingProfileUpdate(Deleting))

	ctx, done := p.bind(ctx)
	defer done()

	confirmation, err := p.gateway.DeleteUser(ctx)
	if err != nil {
		return false, p.fail("delete profile", err, Ready)
	}

	p.mu.Lock()
	if p.closed {
		// The account is gone; its token must not outlive the teardown.
		if p.session != nil {
			if err := p.session.Clear(); err != nil {
				p.logger.Error("failed to clear session", "error", err)
			}
		}
		p.mu.Unlock()
		return false, shared.ErrTornDown
	}
	p.signOutLocked()
	p.mu.Unlock()

	msg := ""
	if confirmation != nil {
		msg = confirmation.Message
	}
	p.logger.Info("profile deleted", "message", msg)
	sendProgress(p.progress, deletingProfileUpdate(LoggedOut))
	return true, nil
}
