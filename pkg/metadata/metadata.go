package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"productimg/pkg/unsplash"
)

// ManifestName is the credits file written in the output base directory
const ManifestName = "credits.json"

// Credit records where a saved image came from
type Credit struct {
	// Output
	Category string `json:"category"`
	Term     string `json:"term"`
	Path     string `json:"path"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size,omitempty"`

	// Source photo
	PhotoID     string `json:"photo_id"`
	Description string `json:"description,omitempty"`
	PageURL     string `json:"page_url"`
	SourceURL   string `json:"source_url"`

	// Attribution
	Photographer    string `json:"photographer"`
	PhotographerURL string `json:"photographer_url"`
	Attribution     string `json:"attribution"`

	DownloadedAt time.Time `json:"downloaded_at"`
}

// Manifest is the on-disk credits file
type Manifest struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`
	Credits     []Credit  `json:"credits"`
}

// FromPhoto builds a Credit for photo saved at path
func FromPhoto(photo *unsplash.Photo, category, term, path string) Credit {
	return Credit{
		Category:        category,
		Term:            term,
		Path:            filepath.ToSlash(path),
		PhotoID:         photo.ID,
		Description:     photo.Caption(),
		PageURL:         photo.Links.HTML,
		SourceURL:       photo.URLs.Regular,
		Photographer:    photo.User.Name,
		PhotographerURL: photo.User.Links.HTML,
		Attribution:     attribution(photo.User.Name),
		DownloadedAt:    time.Now().UTC(),
	}
}

// attribution returns the credit line Unsplash asks for
func attribution(photographer string) string {
	if photographer == "" {
		photographer = "Unknown"
	}
	return fmt.Sprintf("Photo by %s on Unsplash", photographer)
}

// Load reads a manifest; a missing file yields an empty manifest
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Manifest{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Merge replaces credits for the same output path and adds new ones.
// Credits whose image file no longer exists are dropped.
func (m *Manifest) Merge(credits []Credit) {
	byPath := make(map[string]Credit, len(m.Credits)+len(credits))
	for _, c := range m.Credits {
		byPath[c.Path] = c
	}
	for _, c := range credits {
		byPath[c.Path] = c
	}

	m.Credits = m.Credits[:0]
	for path, c := range byPath {
		if _, err := os.Stat(filepath.FromSlash(path)); err != nil {
			continue
		}
		m.Credits = append(m.Credits, c)
	}

	sort.Slice(m.Credits, func(i, j int) bool {
		return m.Credits[i].Path < m.Credits[j].Path
	})
}

// Save writes the manifest to path through a temporary file
func (m *Manifest) Save(path string) error {
	m.GeneratedAt = time.Now().UTC()

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename manifest: %w", err)
	}
	return nil
}

// Update loads the manifest at path, merges credits and saves it back
func Update(path, runID string, credits []Credit) error {
	m, err := Load(path)
	if err != nil {
		return err
	}
	m.RunID = runID
	m.Merge(credits)
	return m.Save(path)
}
