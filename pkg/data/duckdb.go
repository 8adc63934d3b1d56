package data

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb/v2"
)

var schema = []string{`
CREATE TABLE IF NOT EXISTS stories (
	id          VARCHAR PRIMARY KEY,
	title       VARCHAR NOT NULL,
	hero_name   VARCHAR NOT NULL,
	alias       VARCHAR,
	superpower  VARCHAR,
	villain     VARCHAR,
	setting     VARCHAR,
	art_style   VARCHAR,
	created_at  TIMESTAMP NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS pages (
	story_id          VARCHAR NOT NULL,
	page_number       INTEGER NOT NULL,
	panel_description VARCHAR NOT NULL,
	dialogue          VARCHAR NOT NULL,
	image_url         VARCHAR,
	is_loading        BOOLEAN NOT NULL DEFAULT TRUE,
	PRIMARY KEY (story_id, page_number)
)`,
}

func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return db, nil
}

type Repository struct {
	db *sql.DB
}

var (
	duckDB   *sql.DB
	duckDBMu sync.Mutex
)

// NewDuckDBRepository opens the library at path once per process and shares it.
func NewDuckDBRepository(path string) (*Repository, error) {
	duckDBMu.Lock()
	defer duckDBMu.Unlock()

	if duckDB == nil {
		db, err := InitDuckDB(path)
		if err != nil {
			return nil, err
		}
		duckDB = db
	}

	return &Repository{db: duckDB}, nil
}

func (r *Repository) Close() error {
	duckDBMu.Lock()
	defer duckDBMu.Unlock()

	if r.db == duckDB {
		duckDB = nil
	}
	return r.db.Close()
}

// SaveStory upserts the story and all of its pages.
func (r *Repository) SaveStory(story *Story) error {
	if story == nil || story.ID == "" {
		return errors.New("story must have an ID")
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO stories (id, title, hero_name, alias, superpower, villain, setting, art_style, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			hero_name = excluded.hero_name,
			alias = excluded.alias,
			superpower = excluded.superpower,
			villain = excluded.villain,
			setting = excluded.setting,
			art_style = excluded.art_style`,
		story.ID, story.Title, story.HeroName, story.Settings.HeroName,
		story.Settings.Superpower, story.Settings.Villain, story.Settings.Setting, story.Settings.ArtStyle,
		story.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save story: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM pages WHERE story_id = ?`, story.ID); err != nil {
		return fmt.Errorf("failed to clear pages: %w", err)
	}

	for _, p := range story.Pages {
		_, err := tx.Exec(`
			INSERT INTO pages (story_id, page_number, panel_description, dialogue, image_url, is_loading)
			VALUES (?, ?, ?, ?, ?, ?)`,
			story.ID, p.PageNumber, p.PanelDescription, p.Dialogue, p.ImageURL, p.IsLoading,
		)
		if err != nil {
			return fmt.Errorf("failed to save page %d: %w", p.PageNumber, err)
		}
	}

	return tx.Commit()
}

// UpdatePage stores the rendered image of a single page.
func (r *Repository) UpdatePage(storyID string, page Page) error {
	_, err := r.db.Exec(`
		UPDATE pages SET image_url = ?, is_loading = ?
		WHERE story_id = ? AND page_number = ?`,
		page.ImageURL, page.IsLoading, storyID, page.PageNumber,
	)
	return err
}

// GetStory returns nil without error when the story does not exist.
func (r *Repository) GetStory(id string) (*Story, error) {
	row := r.db.QueryRow(`
		SELECT id, title, hero_name, alias, superpower, villain, setting, art_style, created_at
		FROM stories WHERE id = ?`, id)

	story, err := scanStory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	pages, err := r.getPages(id)
	if err != nil {
		return nil, err
	}
	story.Pages = pages
	return story, nil
}

// FindStoryByTitle matches titles case-insensitively and returns the newest hit.
func (r *Repository) FindStoryByTitle(title string) (*Story, error) {
	var id string
	err := r.db.QueryRow(`
		SELECT id FROM stories WHERE lower(title) = lower(?)
		ORDER BY created_at DESC LIMIT 1`, title).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.GetStory(id)
}

// ListStories returns stories newest first, without pages.
func (r *Repository) ListStories() ([]*Story, error) {
	rows, err := r.db.Query(`
		SELECT id, title, hero_name, alias, superpower, villain, setting, art_style, created_at
		FROM stories ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stories []*Story
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, story)
	}
	return stories, rows.Err()
}

func (r *Repository) DeleteStory(id string) error {
	if _, err := r.db.Exec(`DELETE FROM pages WHERE story_id = ?`, id); err != nil {
		return err
	}
	_, err := r.db.Exec(`DELETE FROM stories WHERE id = ?`, id)
	return err
}

// GetStoryWithPageCount returns the story plus its total and rendered page counts.
func (r *Repository) GetStoryWithPageCount(id string) (*Story, int, int, error) {
	story, err := r.GetStory(id)
	if err != nil || story == nil {
		return story, 0, 0, err
	}
	return story, len(story.Pages), story.Rendered(), nil
}

func (r *Repository) getPages(storyID string) ([]Page, error) {
	rows, err := r.db.Query(`
		SELECT page_number, panel_description, dialogue, image_url, is_loading
		FROM pages WHERE story_id = ? ORDER BY page_number`, storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		var p Page
		var imageURL sql.NullString
		if err := rows.Scan(&p.PageNumber, &p.PanelDescription, &p.Dialogue, &imageURL, &p.IsLoading); err != nil {
			return nil, err
		}
		p.ImageURL = imageURL.String
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStory(s scanner) (*Story, error) {
	var story Story
	var alias, superpower, villain, setting, artStyle sql.NullString
	if err := s.Scan(&story.ID, &story.Title, &story.HeroName, &alias,
		&superpower, &villain, &setting, &artStyle, &story.CreatedAt); err != nil {
		return nil, err
	}
	story.Settings = Settings{
		HeroName:   alias.String,
		Superpower: superpower.String,
		Villain:    villain.String,
		Setting:    setting.String,
		ArtStyle:   artStyle.String,
	}
	return &story, nil
}
