package models

// Genre describes a movie genre.
type Genre struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

// Director describes a movie's director. Death is nil while the director is alive.
type Director struct {
	Name  string  `json:"Name"`
	Bio   string  `json:"Bio"`
	Birth string  `json:"Birth,omitempty"`
	Death *string `json:"Death,omitempty"`
}

// Movie is a single catalog entry.
type Movie struct {
	ID          string   `json:"_id"`
	Title       string   `json:"Title"`
	Description string   `json:"Description"`
	ImagePath   string   `json:"ImagePath"`
	Featured    bool     `json:"Featured,omitempty"`
	Genre       Genre    `json:"Genre"`
	Director    Director `json:"Director"`
}
