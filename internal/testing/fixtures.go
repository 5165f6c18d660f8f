package testing

import "github.com/desertthunder/flix/internal/models"

// Catalog returns a three movie catalog with ids "1", "2" and "3", in that order.
func Catalog() []models.Movie {
	death := "2021-06-04"
	return []models.Movie{
		{
			ID:          "1",
			Title:       "Silence of the Lambs",
			Description: "A young FBI cadet must receive the help of an incarcerated cannibal killer.",
			ImagePath:   "silenceofthelambs.png",
			Genre:       models.Genre{Name: "Thriller", Description: "Suspense and excitement."},
			Director:    models.Director{Name: "Jonathan Demme", Bio: "American director.", Birth: "1944-02-22", Death: &death},
		},
		{
			ID:          "2",
			Title:       "Inception",
			Description: "A thief who steals corporate secrets through dream-sharing technology.",
			ImagePath:   "inception.png",
			Featured:    true,
			Genre:       models.Genre{Name: "Science Fiction", Description: "Speculative technology."},
			Director:    models.Director{Name: "Christopher Nolan", Bio: "British-American director.", Birth: "1970-07-30"},
		},
		{
			ID:          "3",
			Title:       "Spirited Away",
			Description: "A girl wanders into a world ruled by gods and witches.",
			ImagePath:   "spiritedaway.png",
			Genre:       models.Genre{Name: "Animation", Description: "Animated films."},
			Director:    models.Director{Name: "Hayao Miyazaki", Bio: "Japanese animator.", Birth: "1941-01-05"},
		},
	}
}

// User returns a user named username whose favorites are ids.
func User(username string, ids ...string) models.User {
	if ids == nil {
		ids = []string{}
	}
	return models.User{
		ID:             "u-" + username,
		Username:       username,
		Email:          username + "@example.com",
		Birthday:       "1990-01-01",
		FavoriteMovies: ids,
	}
}

// IDs returns the ids of movies in order.
func IDs(movies []models.Movie) []string {
	ids := make([]string, 0, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
	}
	return ids
}
