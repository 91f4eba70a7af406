package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"propertyad/internal/config"
)

func Connect(cfg *config.Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS listings (
	id                 UUID PRIMARY KEY,
	property_type      TEXT NOT NULL,
	bhk                TEXT NOT NULL,
	bathrooms          TEXT NOT NULL,
	furnishing         TEXT NOT NULL,
	project_status     TEXT NOT NULL,
	listed_by          TEXT NOT NULL,
	super_builtup_area BIGINT NOT NULL,
	carpet_area        BIGINT NOT NULL,
	maintenance        BIGINT,
	total_floors       BIGINT NOT NULL,
	floor_no           BIGINT NOT NULL,
	car_parking        TEXT NOT NULL,
	facing             TEXT NOT NULL,
	project_name       TEXT NOT NULL DEFAULT '',
	ad_title           VARCHAR(70) NOT NULL,
	description        VARCHAR(4096) NOT NULL,
	price              BIGINT NOT NULL,
	state              TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS listing_images (
	listing_id    UUID NOT NULL REFERENCES listings(id) ON DELETE CASCADE,
	attachment_id TEXT NOT NULL,
	name          TEXT NOT NULL,
	content_type  TEXT NOT NULL,
	size_bytes    BIGINT NOT NULL,
	position      INT NOT NULL,
	PRIMARY KEY (listing_id, position)
);
`

// Migrate creates the listing tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
