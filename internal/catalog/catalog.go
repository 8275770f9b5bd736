package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/tubetunes/internal/model"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a song or playlist does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS songs (
	identifier    TEXT PRIMARY KEY,
	title         TEXT NOT NULL DEFAULT '',
	artist        TEXT NOT NULL DEFAULT '',
	album         TEXT NOT NULL DEFAULT '',
	duration      REAL NOT NULL DEFAULT 0,
	upload_date   TEXT NOT NULL DEFAULT '',
	source_url    TEXT NOT NULL DEFAULT '',
	thumbnail_url TEXT NOT NULL DEFAULT '',
	path          TEXT NOT NULL,
	size          INTEGER NOT NULL DEFAULT 0,
	format        TEXT NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS playlists (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS playlist_songs (
	playlist_id INTEGER NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
	identifier  TEXT NOT NULL REFERENCES songs(identifier) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	PRIMARY KEY (playlist_id, identifier)
);
`

// Catalog is the SQLite record of downloaded songs and user playlists.
//
// It implements download.Store: the manager skips identifiers already in
// the catalog and saves every completed artifact.
type Catalog struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the catalog database at path.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}

	// Connection pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure catalog: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}

	return &Catalog{db: db, now: time.Now}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// ExistsByIdentifier reports whether a song with identifier was saved.
func (c *Catalog) ExistsByIdentifier(ctx context.Context, identifier string) (bool, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM songs WHERE identifier = ?`, identifier).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Save inserts the artifact or replaces the song with the same identifier.
func (c *Catalog) Save(ctx context.Context, a model.Artifact) error {
	if strings.TrimSpace(a.Identifier) == "" {
		return errors.New("artifact has no identifier")
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO songs (identifier, title, artist, album, duration, upload_date,
			source_url, thumbnail_url, path, size, format, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			duration = excluded.duration,
			upload_date = excluded.upload_date,
			source_url = excluded.source_url,
			thumbnail_url = excluded.thumbnail_url,
			path = excluded.path,
			size = excluded.size,
			format = excluded.format`,
		a.Identifier, a.Title, a.Artist, a.Album, a.Duration, a.UploadDate,
		a.SourceURL, a.ThumbnailURL, a.Path, a.Size, a.Format, c.now().Unix())
	if err != nil {
		return fmt.Errorf("save %s: %w", a.Identifier, err)
	}
	return nil
}

const songColumns = `identifier, title, artist, album, duration, upload_date,
	source_url, thumbnail_url, path, size, format`

type scanner interface {
	Scan(dest ...any) error
}

func scanSong(s scanner) (model.Artifact, error) {
	var a model.Artifact
	err := s.Scan(&a.Identifier, &a.Title, &a.Artist, &a.Album, &a.Duration, &a.UploadDate,
		&a.SourceURL, &a.ThumbnailURL, &a.Path, &a.Size, &a.Format)
	return a, err
}

// Get returns the song saved under identifier.
func (c *Catalog) Get(ctx context.Context, identifier string) (model.Artifact, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+songColumns+` FROM songs WHERE identifier = ?`, identifier)
	a, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Artifact{}, fmt.Errorf("song %s: %w", identifier, ErrNotFound)
	}
	return a, err
}

// ListSongs returns all songs, oldest first.
func (c *Catalog) ListSongs(ctx context.Context) ([]model.Artifact, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT `+songColumns+` FROM songs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	return collectSongs(rows)
}

// DeleteSong removes a song and its playlist entries. The file is kept.
func (c *Catalog) DeleteSong(ctx context.Context, identifier string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM songs WHERE identifier = ?`, identifier)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("song %s: %w", identifier, ErrNotFound)
	}
	return nil
}

// CreatePlaylist creates a playlist. Creating an existing one is a no-op.
func (c *Catalog) CreatePlaylist(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("playlist name is empty")
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO playlists (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING`,
		name, c.now().Unix())
	return err
}

// AddToPlaylist appends a saved song to a playlist. Adding a song that is
// already in the playlist keeps its position.
func (c *Catalog) AddToPlaylist(ctx context.Context, playlist, identifier string) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var playlistID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM playlists WHERE name = ?`, playlist).Scan(&playlistID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("playlist %s: %w", playlist, ErrNotFound)
	}
	if err != nil {
		return err
	}

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM songs WHERE identifier = ?`, identifier).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("song %s: %w", identifier, ErrNotFound)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO playlist_songs (playlist_id, identifier, position)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1 FROM playlist_songs WHERE playlist_id = ?
		ON CONFLICT(playlist_id, identifier) DO NOTHING`,
		playlistID, identifier, playlistID)
	if err != nil {
		return fmt.Errorf("add %s to %s: %w", identifier, playlist, err)
	}
	return tx.Commit()
}

// PlaylistSongs returns the songs of a playlist in playlist order.
func (c *Catalog) PlaylistSongs(ctx context.Context, playlist string) ([]model.Artifact, error) {
	var playlistID int64
	err := c.db.QueryRowContext(ctx, `SELECT id FROM playlists WHERE name = ?`, playlist).Scan(&playlistID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("playlist %s: %w", playlist, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT s.identifier, s.title, s.artist, s.album, s.duration, s.upload_date,
			s.source_url, s.thumbnail_url, s.path, s.size, s.format
		FROM playlist_songs ps JOIN songs s ON s.identifier = ps.identifier
		WHERE ps.playlist_id = ?
		ORDER BY ps.position`, playlistID)
	if err != nil {
		return nil, err
	}
	return collectSongs(rows)
}

func collectSongs(rows *sql.Rows) ([]model.Artifact, error) {
	defer rows.Close()

	var songs []model.Artifact
	for rows.Next() {
		a, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, a)
	}
	return songs, rows.Err()
}
