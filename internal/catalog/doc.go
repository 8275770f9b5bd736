// Package catalog persists downloaded songs and playlists in SQLite.
//
// The catalog is the durable record the download manager consults before
// admitting an identifier and writes to after each successful download.
// Playlists reference songs by identifier; deleting a song removes it
// from every playlist but leaves the file on disk.
//
// The database runs in WAL mode through the pure Go modernc.org/sqlite
// driver, so no cgo toolchain is needed.
package catalog
