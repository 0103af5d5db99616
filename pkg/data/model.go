package data

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

const (
	upsertModelSQL = `INSERT INTO model (name, source, artifact, metadata, checksum, model_type, imported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT(name) DO UPDATE SET
			source = excluded.source,
			artifact = excluded.artifact,
			metadata = excluded.metadata,
			checksum = excluded.checksum,
			model_type = excluded.model_type,
			imported_at = excluded.imported_at
	`

	selectModelSQL = `SELECT name, source, artifact, metadata, checksum, model_type, imported_at
		FROM model
		WHERE name = $1
	`

	selectModelsSQL = `SELECT name, source, checksum, model_type, imported_at
		FROM model
		ORDER BY imported_at DESC, name
	`

	deleteModelSQL = `DELETE FROM model WHERE name = $1`
)

// ErrModelNotFound is returned when no model is registered under a name.
var ErrModelNotFound = errors.New("model not found")

// ErrChecksumMismatch is returned when a stored model no longer matches the
// checksum recorded at import.
var ErrChecksumMismatch = errors.New("model checksum mismatch")

// ModelRecord is a registered artifact/metadata pair.
type ModelRecord struct {
	Name       string    `json:"name" yaml:"name"`
	Source     string    `json:"source" yaml:"source"`
	Artifact   []byte    `json:"-" yaml:"-"`
	Metadata   []byte    `json:"-" yaml:"-"`
	Checksum   string    `json:"checksum" yaml:"checksum"`
	ModelType  string    `json:"model_type,omitempty" yaml:"modelType,omitempty"`
	ImportedAt time.Time `json:"imported_at" yaml:"importedAt"`
}

// Checksum returns the hex SHA-256 of the artifact followed by the metadata.
func Checksum(artifact, metadata []byte) string {
	h := sha256.New()
	h.Write(artifact)
	h.Write(metadata)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify checks the artifact and metadata against the recorded checksum.
func (r *ModelRecord) Verify() error {
	if sum := Checksum(r.Artifact, r.Metadata); sum != r.Checksum {
		return fmt.Errorf("%w: %s (expected %s, got %s)", ErrChecksumMismatch, r.Name, r.Checksum, sum)
	}
	return nil
}

// SaveModel inserts or replaces the model registered under r.Name.
func SaveModel(db *sql.DB, r *ModelRecord) error {
	if db == nil {
		return errDBNotInitialized
	}
	if r == nil || r.Name == "" {
		return errors.New("model name required")
	}
	if len(r.Artifact) == 0 || len(r.Metadata) == 0 {
		return fmt.Errorf("model %s: artifact and metadata are required", r.Name)
	}

	if r.Checksum == "" {
		r.Checksum = Checksum(r.Artifact, r.Metadata)
	}
	if r.ImportedAt.IsZero() {
		r.ImportedAt = time.Now().UTC()
	}

	if _, err := db.Exec(upsertModelSQL,
		r.Name, r.Source, string(r.Artifact), string(r.Metadata),
		r.Checksum, r.ModelType, r.ImportedAt.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("error saving model %s: %w", r.Name, err)
	}
	return nil
}

// GetModel returns the model registered under name.
func GetModel(db *sql.DB, name string) (*ModelRecord, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var (
		r                  ModelRecord
		artifact, metadata string
		importedAt         string
	)
	err := db.QueryRow(selectModelSQL, name).Scan(
		&r.Name, &r.Source, &artifact, &metadata, &r.Checksum, &r.ModelType, &importedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, name)
		}
		return nil, fmt.Errorf("error querying model %s: %w", name, err)
	}

	r.Artifact = []byte(artifact)
	r.Metadata = []byte(metadata)
	if r.ImportedAt, err = time.Parse(time.RFC3339, importedAt); err != nil {
		return nil, fmt.Errorf("error parsing import time of model %s: %w", name, err)
	}
	return &r, nil
}

// ListModels returns all registered models without their documents, most
// recently imported first.
func ListModels(db *sql.DB) ([]*ModelRecord, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectModelsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query models: %w", err)
	}
	defer rows.Close()

	list := make([]*ModelRecord, 0)
	for rows.Next() {
		var (
			r          ModelRecord
			importedAt string
		)
		if err := rows.Scan(&r.Name, &r.Source, &r.Checksum, &r.ModelType, &importedAt); err != nil {
			return nil, fmt.Errorf("failed to scan model row: %w", err)
		}
		if r.ImportedAt, err = time.Parse(time.RFC3339, importedAt); err != nil {
			return nil, fmt.Errorf("error parsing import time of model %s: %w", r.Name, err)
		}
		list = append(list, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate models: %w", err)
	}
	return list, nil
}

// DeleteModel removes the model registered under name.
func DeleteModel(db *sql.DB, name string) error {
	if db == nil {
		return errDBNotInitialized
	}

	res, err := db.Exec(deleteModelSQL, name)
	if err != nil {
		return fmt.Errorf("error deleting model %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading deleted rows for %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrModelNotFound, name)
	}
	return nil
}
