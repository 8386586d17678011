package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	name TEXT PRIMARY KEY,
	data BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS subtitles (
	hash TEXT PRIMARY KEY,
	data BYTEA NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);`

type PgRoomStore struct {
	conn *sql.DB
}

func NewPgRoomStore(dsn string) (*PgRoomStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("bootstrap schema: %w", err)
	}

	return &PgRoomStore{conn: db}, nil
}

func (db *PgRoomStore) Ping() error {
	return db.conn.Ping()
}

func (db *PgRoomStore) SaveRoom(name string, data []byte) error {
	_, err := db.conn.Exec(
		"INSERT INTO rooms (name, data, updated_at) VALUES ($1, $2, $3) "+
			"ON CONFLICT (name) DO UPDATE SET data = $2, updated_at = $3",
		name,
		data,
		time.Now().UTC(),
	)
	return err
}

func (db *PgRoomStore) LoadRoom(name string) ([]byte, error) {
	row := db.conn.QueryRow(
		"SELECT data FROM rooms WHERE name = $1 LIMIT 1",
		name,
	)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (db *PgRoomStore) DeleteRoom(name string) error {
	_, err := db.conn.Exec("DELETE FROM rooms WHERE name = $1", name)
	return err
}

func (db *PgRoomStore) SaveSubtitle(hash string, data []byte) error {
	_, err := db.conn.Exec(
		"INSERT INTO subtitles (hash, data, created_at) VALUES ($1, $2, $3) "+
			"ON CONFLICT (hash) DO NOTHING",
		hash,
		data,
		time.Now().UTC(),
	)
	return err
}

func (db *PgRoomStore) GetSubtitle(hash string) ([]byte, error) {
	row := db.conn.QueryRow(
		"SELECT data FROM subtitles WHERE hash = $1 LIMIT 1",
		hash,
	)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (db *PgRoomStore) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
