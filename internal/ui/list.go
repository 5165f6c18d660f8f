package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/flix/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie    models.Movie
	favorite bool
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if i.favorite {
		return fmt.Sprintf("%s %s", styles.star.Render("★"), i.movie.Title)
	}
	return i.movie.Title
}
func (i movieItem) Description() string {
	desc := i.movie.Genre.Name
	if i.movie.Director.Name != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.movie.Director.Name)
	}
	return desc
}

// movieItems builds list items for movies, marking members of favorites.
func movieItems(movies []models.Movie, favorites []models.Movie) []list.Item {
	marked := make(map[string]bool, len(favorites))
	for _, f := range favorites {
		marked[f.ID] = true
	}

	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m, favorite: marked[m.ID]}
	}
	return items
}
