// Copyright 2025 The Pantry Pirate Radio Authors
//
// SPDX-License-Identifier: Apache-2.0
package query

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/For-The-Greater-Good/pantry-pirate-radio-sub001/spatial"
	"github.com/uber/h3-go/v4"
)

// LocationRepository handles persistence of location records.
type LocationRepository interface {
	// CreateSchema creates the locations table
	CreateSchema() error

	// Upsert inserts or replaces records; returns the number written
	Upsert(records []*LocationRecord) (int, error)

	// AllLocated returns records carrying coordinates, in store order
	AllLocated() ([]*LocationRecord, error)

	// MissingCoordinates returns records without coordinates
	MissingCoordinates() ([]*LocationRecord, error)

	// UpdatePoint sets the coordinates for one record
	UpdatePoint(id string, p spatial.Point) error

	// Count returns the total number of records
	Count() (int, error)

	// DB returns the underlying database connection
	DB() *sql.DB
}

type sqlLocationRepository struct {
	db *sql.DB
}

// NewLocationRepository creates a DuckDB-backed repository.
func NewLocationRepository(db *sql.DB) LocationRepository {
	return &sqlLocationRepository{db: db}
}

func (r *sqlLocationRepository) DB() *sql.DB {
	return r.db
}

func (r *sqlLocationRepository) CreateSchema() error {
	// DuckDB needs to load the spatial extension for POINT_2D
	_, err := r.db.Exec(`INSTALL spatial; LOAD spatial;`)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(`
		CREATE TABLE IF NOT EXISTS locations (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			address VARCHAR NOT NULL,
			org VARCHAR,
			point POINT_2D,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			h3_res6 UBIGINT
		);
	`)

	return err
}

func computeH3(r *LocationRecord) error {
	if r.Point == nil {
		r.H3Res6 = 0

		return nil
	}

	cell, err := h3.LatLngToCell(h3.NewLatLng(r.Point.Lat, r.Point.Lng), IndexResolution)
	if err != nil {
		return fmt.Errorf("converting %q to h3 cell: %w", r.ID, err)
	}

	r.H3Res6 = int64(cell)

	return nil
}

func (r *sqlLocationRepository) Upsert(records []*LocationRecord) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO locations(id, name, address, org, point, updated_at, h3_res6)
		VALUES (?, ?, ?, ?, ST_Point(?, ?), ?, ?)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return 0, err
	}
	defer stmt.Close()

	nullStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO locations(id, name, address, org, point, updated_at, h3_res6)
		VALUES (?, ?, ?, ?, NULL, ?, NULL)
	`)
	if err != nil {
		if rErr := tx.Rollback(); rErr != nil {
			err = rErr
		}

		return 0, err
	}
	defer nullStmt.Close()

	written := 0

	for _, rec := range records {
		if rec.ID == "" {
			if rErr := tx.Rollback(); rErr != nil {
				return 0, rErr
			}

			return 0, errors.New("record id can't be empty")
		}

		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = time.Now()
		}

		var org *string
		if rec.Org != "" {
			org = &rec.Org
		}

		if rec.Point == nil {
			_, err = nullStmt.Exec(rec.ID, rec.Name, rec.Address, org, rec.UpdatedAt)
		} else {
			if err = computeH3(rec); err == nil {
				_, err = stmt.Exec(
					rec.ID,
					rec.Name,
					rec.Address,
					org,
					rec.Point.Lng,
					rec.Point.Lat,
					rec.UpdatedAt,
					rec.H3Res6,
				)
			}
		}

		if err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				err = rErr
			}

			return 0, err
		}

		written++
	}

	return written, tx.Commit()
}

const baseSelect = `
	SELECT id, name, address, org, point, updated_at, h3_res6
	FROM locations
`

func (r *sqlLocationRepository) list(query string, args ...any) ([]*LocationRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*LocationRecord

	for rows.Next() {
		rec := &LocationRecord{}

		var org sql.NullString

		var point spatial.Point

		var pointRaw any

		var h3Res6 sql.NullInt64

		err := rows.Scan(&rec.ID, &rec.Name, &rec.Address, &org, &pointRaw, &rec.UpdatedAt, &h3Res6)
		if err != nil {
			return nil, err
		}

		if org.Valid {
			rec.Org = org.String
		}

		if pointRaw != nil {
			if err := point.Scan(pointRaw); err != nil {
				return nil, fmt.Errorf("scanning point for %q: %w", rec.ID, err)
			}

			rec.Point = &point
		}

		if h3Res6.Valid {
			rec.H3Res6 = h3Res6.Int64
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *sqlLocationRepository) AllLocated() ([]*LocationRecord, error) {
	return r.list(baseSelect + ` WHERE point IS NOT NULL ORDER BY id`)
}

func (r *sqlLocationRepository) MissingCoordinates() ([]*LocationRecord, error) {
	return r.list(baseSelect + ` WHERE point IS NULL ORDER BY id`)
}

func (r *sqlLocationRepository) UpdatePoint(id string, p spatial.Point) error {
	rec := &LocationRecord{ID: id, Point: &p}
	if err := computeH3(rec); err != nil {
		return err
	}

	res, err := r.db.Exec(`
		UPDATE locations
		SET point = ST_Point(?, ?), h3_res6 = ?, updated_at = ?
		WHERE id = ?
	`, p.Lng, p.Lat, rec.H3Res6, time.Now(), id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return fmt.Errorf("no location with id %q", id)
	}

	return nil
}

func (r *sqlLocationRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM locations").Scan(&count)

	return count, err
}
