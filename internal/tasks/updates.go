package tasks

import "fmt"

// ProgressUpdate represents a state change of a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	State   State  // Profile state after the change
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, usually a [View]
}

// Operation phase enumeration
type Phase int

const (
	LoadUser Phase = iota
	LoadCatalog
	Reconciled
	AddFavorite
	RemoveFavorite
	UpdateProfile
	DeleteProfile
	SignedOut
	LoadFailed
)

func (p Phase) String() string {
	switch p {
	case LoadUser:
		return "load_user"
	case LoadCatalog:
		return "load_catalog"
	case Reconciled:
		return "reconciled"
	case AddFavorite:
		return "add_favorite"
	case RemoveFavorite:
		return "remove_favorite"
	case UpdateProfile:
		return "update_profile"
	case DeleteProfile:
		return "delete_profile"
	case SignedOut:
		return "signed_out"
	case LoadFailed:
		return "load_failed"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func loadingUserUpdate(username string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadUser,
		State:   LoadingUser,
		Step:    1,
		Total:   3,
		Message: fmt.Sprintf("Fetching profile for %s...", username),
	}
}

func loadingCatalogUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadCatalog,
		State:   LoadingCatalog,
		Step:    2,
		Total:   3,
		Message: "Fetching movie catalog...",
	}
}

func reconciledUpdate(v View) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconciled,
		State:   Ready,
		Step:    3,
		Total:   3,
		Message: fmt.Sprintf("%d of %d movies are favorites", len(v.Favorites), len(v.Catalog)),
		Data:    v,
	}
}

func loadFailedUpdate(state State, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadFailed,
		State:   state,
		Message: fmt.Sprintf("Request failed: %v", err),
	}
}

func favoriteUpdate(phase Phase, id string, v View) ProgressUpdate {
	verb := "Added"
	if phase == RemoveFavorite {
		verb = "Removed"
	}
	return ProgressUpdate{
		Phase:   phase,
		State:   v.State,
		Message: fmt.Sprintf("%s %s (%d favorites)", verb, id, len(v.Favorites)),
		Data:    v,
	}
}

func updatingProfileUpdate(state State, v *View) ProgressUpdate {
	u := ProgressUpdate{Phase: UpdateProfile, State: state, Message: "Updating profile..."}
	if v != nil {
		u.Message = fmt.Sprintf("Profile updated for %s", v.User.Username)
		u.Data = *v
	}
	return u
}

func deletingProfileUpdate(state State) ProgressUpdate {
	msg := "Deleting profile..."
	if state == LoggedOut {
		msg = "Profile deleted"
	}
	return ProgressUpdate{Phase: DeleteProfile, State: state, Message: msg}
}

func signedOutUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: SignedOut, State: LoggedOut, Message: "Session is no longer valid; signed out"}
}

func bulkFavoriteUpdate(step, total int, res FavoriteResult) ProgressUpdate {
	mark := "✓"
	if res.Err != nil {
		mark = "✗"
	}
	phase := AddFavorite
	if !res.Add {
		phase = RemoveFavorite
	}
	return ProgressUpdate{
		Phase:   phase,
		State:   Ready,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, res.ID),
		Data:    res,
	}
}
