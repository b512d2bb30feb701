package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

var _ ConfigRepository = (*SQLConfigRepository)(nil)

// SQLConfigRepository handles database operations for current configurations
type SQLConfigRepository struct {
	db *DB
}

func NewConfigRepository(db *DB) *SQLConfigRepository {
	return &SQLConfigRepository{db: db}
}

// Add inserts a current configuration and returns the stored record.
func (r *SQLConfigRepository) Add(config CurrentConfig) (*CurrentConfig, error) {
	fields, err := marshalFields(config.Fields)
	if err != nil {
		return nil, err
	}

	var id int64
	err = r.db.QueryRow(`
		INSERT INTO current_configs (name, type, rate, valid_until, fields)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, config.Name, config.Type, config.Rate, config.ValidUntil, fields).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to add config: %w", err)
	}

	return r.getByID(id)
}

// GetAll returns every configuration record, newest first.
func (r *SQLConfigRepository) GetAll() ([]CurrentConfig, error) {
	rows, err := r.db.Query(`
		SELECT id, name, type, rate, valid_until, fields, created_at
		FROM current_configs
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query configs: %w", err)
	}
	defer rows.Close()

	var configs []CurrentConfig
	for rows.Next() {
		config, err := scanConfig(rows.Scan)
		if err != nil {
			return nil, err
		}
		configs = append(configs, *config)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating config rows: %w", err)
	}

	return configs, nil
}

// FindCurrent returns the most recently inserted configuration for a utility
// type, or nil when none exists.
func (r *SQLConfigRepository) FindCurrent(utilityType string) (*CurrentConfig, error) {
	config, err := scanConfig(r.db.QueryRow(`
		SELECT id, name, type, rate, valid_until, fields, created_at
		FROM current_configs
		WHERE type = ?
		ORDER BY id DESC
		LIMIT 1
	`, utilityType).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return config, err
}

func (r *SQLConfigRepository) Remove(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM current_configs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to remove config: %w", err)
	}
	return nil
}

func (r *SQLConfigRepository) getByID(id int64) (*CurrentConfig, error) {
	config, err := scanConfig(r.db.QueryRow(`
		SELECT id, name, type, rate, valid_until, fields, created_at
		FROM current_configs
		WHERE id = ?
	`, id).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return config, err
}

func scanConfig(scan func(...interface{}) error) (*CurrentConfig, error) {
	var config CurrentConfig
	var fields sql.NullString

	err := scan(&config.ID, &config.Name, &config.Type, &config.Rate,
		&config.ValidUntil, &fields, &config.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan config row: %w", err)
	}

	if fields.Valid && fields.String != "" {
		if err := json.Unmarshal([]byte(fields.String), &config.Fields); err != nil {
			return nil, fmt.Errorf("failed to decode config fields: %w", err)
		}
	}

	return &config, nil
}

func marshalFields(fields map[string]interface{}) (interface{}, error) {
	if fields == nil {
		return nil, nil
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config fields: %w", err)
	}
	return string(data), nil
}
