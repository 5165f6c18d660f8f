// package formatter renders movie lists as tables and exports them to CSV, Markdown, plain text or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// Formats accepted by [WriteExport].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatJSON     = "json"
)

// FavoritesExport is a user's favorites at a point in time.
type FavoritesExport struct {
	Username   string         `json:"username"`
	ExportedAt time.Time      `json:"exported_at"`
	Movies     []models.Movie `json:"movies"`
}

// NewFavoritesExport creates a [FavoritesExport] stamped with the current time.
func NewFavoritesExport(username string, movies []models.Movie) *FavoritesExport {
	if movies == nil {
		movies = []models.Movie{}
	}
	return &FavoritesExport{Username: username, ExportedAt: time.Now().UTC(), Movies: movies}
}

// MovieTable renders movies as a bordered table. Rows whose id is in favorites are starred.
func MovieTable(movies []models.Movie, favorites []string) string {
	fav := make(map[string]bool, len(favorites))
	for _, id := range favorites {
		fav[id] = true
	}

	rows := make([][]string, 0, len(movies))
	for i, m := range movies {
		star := ""
		if fav[m.ID] {
			star = "★"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), star, m.ID, m.Title, m.Genre.Name, m.Director.Name})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "♥", "ID", "Title", "Genre", "Director").
		Rows(rows...)
	return t.String()
}

// MovieDetail renders a single movie with its genre and director.
func MovieDetail(m models.Movie) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", m.Title)
	fmt.Fprintf(&buf, "%s\n\n", strings.Repeat("=", len([]rune(m.Title))))
	if m.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", m.Description)
	}
	fmt.Fprintf(&buf, "ID:       %s\n", m.ID)
	fmt.Fprintf(&buf, "Genre:    %s\n", m.Genre.Name)
	fmt.Fprintf(&buf, "Director: %s\n", DirectorLifespan(m.Director))
	if m.Featured {
		buf.WriteString("Featured: yes\n")
	}
	if m.ImagePath != "" {
		fmt.Fprintf(&buf, "Image:    %s\n", m.ImagePath)
	}
	return buf.String()
}

// DirectorLifespan renders "Name (birth–death)", omitting unknown dates.
func DirectorLifespan(d models.Director) string {
	switch {
	case d.Birth == "" && d.Death == nil:
		return d.Name
	case d.Death == nil:
		return fmt.Sprintf("%s (b. %s)", d.Name, d.Birth)
	default:
		return fmt.Sprintf("%s (%s–%s)", d.Name, d.Birth, *d.Death)
	}
}

// ExportToCSV converts a FavoritesExport to CSV format with columns: ID, Title, Genre, Director, Featured, ImagePath
func ExportToCSV(export *FavoritesExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Genre", "Director", "Featured", "ImagePath"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range export.Movies {
		record := []string{
			m.ID,
			m.Title,
			m.Genre.Name,
			m.Director.Name,
			strconv.FormatBool(m.Featured),
			m.ImagePath,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a FavoritesExport to Markdown format
func ExportToMarkdown(export *FavoritesExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s's favorites\n\n", export.Username)
	fmt.Fprintf(&buf, "**Movies**: %d\n", len(export.Movies))
	fmt.Fprintf(&buf, "**Exported**: %s\n\n", export.ExportedAt.Format(time.RFC3339))

	buf.WriteString("## Movies\n\n")
	for i, m := range export.Movies {
		fmt.Fprintf(&buf, "%d. **%s** (%s) directed by %s\n", i+1, m.Title, m.Genre.Name, m.Director.Name)
		if m.Description != "" {
			fmt.Fprintf(&buf, "   %s\n", m.Description)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a FavoritesExport to plain text format
func ExportToText(export *FavoritesExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Favorites: %s\n", export.Username)
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(export.Movies))

	for i, m := range export.Movies {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, m.Title, m.Director.Name)
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a FavoritesExport to indented JSON
func ExportToJSON(export *FavoritesExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// DefaultExportPath returns {username}_favorites.{ext} for format.
func DefaultExportPath(username, format string) string {
	ext := format
	switch format {
	case FormatMarkdown:
		ext = "md"
	case FormatCSV, FormatText, FormatJSON:
	default:
		ext = "json"
	}
	return fmt.Sprintf("%s_favorites.%s", username, ext)
}

// WriteExport renders export in format and writes it to path, creating parent directories.
//
// An empty path defaults to [DefaultExportPath]. Returns the path written.
func WriteExport(export *FavoritesExport, format, path string) (string, error) {
	if path == "" {
		path = DefaultExportPath(export.Username, format)
	}

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatCSV:
		data, err = ExportToCSV(export)
	case FormatMarkdown:
		data, err = ExportToMarkdown(export)
	case FormatText:
		data, err = ExportToText(export)
	case FormatJSON, "":
		data, err = ExportToJSON(export)
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render %s export: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
