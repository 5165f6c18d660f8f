package tasks

import "github.com/desertthunder/flix/internal/models"

// Reconcile returns the movies of catalog whose id is in favoriteIDs, in catalog order.
//
// Unknown ids are ignored and duplicate ids have no effect. The result is never nil.
func Reconcile(catalog []models.Movie, favoriteIDs []string) []models.Movie {
	favorites := make([]models.Movie, 0, min(len(catalog), len(favoriteIDs)))
	if len(catalog) == 0 || len(favoriteIDs) == 0 {
		return favorites
	}

	set := make(map[string]struct{}, len(favoriteIDs))
	for _, id := range favoriteIDs {
		set[id] = struct{}{}
	}

	for _, m := range catalog {
		if _, ok := set[m.ID]; ok {
			favorites = append(favorites, m)
		}
	}
	return favorites
}
