package database

import (
    "context"
    "database/sql"
    "embed"
    "fmt"
    "log"
    "sort"
    "strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Migrate applies the embedded SQL migrations in filename order.  Each
// file is named NNN_description.sql; its NNN prefix is the version.
// Applied versions are recorded in schema_migrations, so running
// Migrate again is a no-op for versions already present.  It is called
// once at startup, before the server accepts traffic.
func Migrate(ctx context.Context, db *sql.DB) error {
    const table = `CREATE TABLE IF NOT EXISTS schema_migrations (
        version    VARCHAR(16) PRIMARY KEY,
        applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    ) ENGINE=InnoDB`
    if _, err := db.ExecContext(ctx, table); err != nil {
        return fmt.Errorf("create schema_migrations: %w", err)
    }

    applied := map[string]bool{}
    rows, err := db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
    if err != nil {
        return fmt.Errorf("read schema_migrations: %w", err)
    }
    defer rows.Close()
    for rows.Next() {
        var v string
        if err := rows.Scan(&v); err != nil {
            return err
        }
        applied[v] = true
    }
    if err := rows.Err(); err != nil {
        return err
    }

    entries, err := migrationFS.ReadDir("migrations")
    if err != nil {
        return fmt.Errorf("read migrations dir: %w", err)
    }
    names := make([]string, 0, len(entries))
    for _, e := range entries {
        if strings.HasSuffix(e.Name(), ".sql") {
            names = append(names, e.Name())
        }
    }
    sort.Strings(names)

    for _, name := range names {
        version, _, ok := strings.Cut(name, "_")
        if !ok {
            return fmt.Errorf("migration %q: name must be NNN_description.sql", name)
        }
        if applied[version] {
            continue
        }
        body, err := migrationFS.ReadFile("migrations/" + name)
        if err != nil {
            return err
        }
        if err := applyOne(ctx, db, version, name, string(body)); err != nil {
            return err
        }
        log.Printf("database: applied migration %s", name)
    }
    return nil
}

// applyOne runs every statement of a single migration file and then
// records its version.  MySQL DDL statements commit implicitly, so
// statements are executed one by one rather than inside a transaction;
// the version row is written last, after all statements succeeded.
func applyOne(ctx context.Context, db *sql.DB, version, name, body string) error {
    for _, stmt := range strings.Split(body, ";") {
        stmt = strings.TrimSpace(stmt)
        if stmt == "" {
            continue
        }
        if _, err := db.ExecContext(ctx, stmt); err != nil {
            return fmt.Errorf("migration %s: %w", name, err)
        }
    }
    if _, err := db.ExecContext(ctx,
        `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
        return fmt.Errorf("record migration %s: %w", name, err)
    }
    return nil
}
