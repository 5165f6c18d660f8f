// Package tasks keeps the signed-in user's favorites consistent with the movie catalog.
//
// # Reconciliation
//
// [Reconcile] is a pure, order-preserving filter of the catalog by the favorite-id set.
// The favorites view is always recomputed from it; nothing is patched in place.
//
// # Profile Lifecycle
//
// A [Profile] moves through these states:
//
//	Uninitialized → LoadingUser → LoadingCatalog → Ready ⇄ (Updating | Deleting)
//	                                                 ↓
//	                                      LoggedOut (terminal) / Failed (retry with Load)
//
// Favorite changes are applied to the local id set only after the backend confirms them, then the
// view is re-reconciled without re-fetching the catalog. A second change for a movie whose first
// change is still in flight fails with [shared.ErrFavoriteBusy] and sends nothing.
//
// Deletion asks a [Confirmer] first; declining is not an error. Any call that finds the session
// rejected clears it and leaves the profile [LoggedOut]. [Profile.Close] cancels calls in flight
// and discards whatever still arrives.
//
// # Authentication
//
// [Authenticator] signs in (storing token and username together), signs up (register then sign in)
// and signs out.
//
// # Progress Reporting
//
// State changes are sent as [ProgressUpdate] values on an optional channel without blocking.
package tasks
