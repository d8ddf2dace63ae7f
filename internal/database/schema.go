// internal/database/schema.go
//
// FormRelayer – service table definitions.
//
// Context
//   Three tables carry the whole service: form (definition + per-form
//   settings as JSON), submission (values + request metadata), and setting
//   (site-wide key/value pairs).  Migrate is idempotent; it runs on every
//   boot and only creates what is missing.  Column changes still need a
//   hand-written migration.
//
//------------------------------------------------------------------------------

package database

import (
	"context"

	"github.com/jmoiron/sqlx"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS form (
        id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        slug       VARCHAR(100)    NOT NULL,
        title      VARCHAR(255)    NOT NULL,
        status     VARCHAR(16)     NOT NULL DEFAULT 'draft',
        fields     JSON            NOT NULL,
        settings   JSON            NOT NULL,
        created_at DATETIME        NOT NULL,
        updated_at DATETIME        NOT NULL,
        PRIMARY KEY (id),
        UNIQUE KEY uq_form_slug (slug),
        KEY ix_form_status (status)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS submission (
        id           BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
        form_id      BIGINT UNSIGNED NOT NULL,
        title        VARCHAR(255)    NOT NULL DEFAULT '',
        data         JSON            NOT NULL,
        is_read      TINYINT(1)      NOT NULL DEFAULT 0,
        ip           VARCHAR(45)     NOT NULL DEFAULT '',
        user_agent   VARCHAR(512)    NOT NULL DEFAULT '',
        country      CHAR(2)         NOT NULL DEFAULT '',
        submitted_at DATETIME        NOT NULL,
        PRIMARY KEY (id),
        KEY ix_submission_form (form_id, submitted_at),
        KEY ix_submission_unread (form_id, is_read)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS setting (
        name  VARCHAR(64)  NOT NULL,
        value TEXT         NOT NULL,
        PRIMARY KEY (name)
    ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates the service tables when absent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
