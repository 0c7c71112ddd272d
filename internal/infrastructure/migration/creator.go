package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const migrationUpTemplate = `-- Migration: {{.Name}} ({{.Driver}})
-- Created: {{.Timestamp}}
-- Description: {{.Description}}

`

const migrationDownTemplate = `-- Migration: {{.Name}} ({{.Driver}}, rollback)
-- Created: {{.Timestamp}}
-- Description: Rollback for {{.Description}}

`

// MigrationFile describes one up/down pair on disk.
type MigrationFile struct {
	Version     uint
	Name        string
	Driver      string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty up/down pair for every driver directory under
// migrationsDir (migrationsDir/sqlite, migrationsDir/postgres). The version is the
// next sequence number across both directories so the dialects stay aligned.
func CreateMigration(migrationsDir, name, description string, now time.Time) ([]*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}

	var next uint
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		existing, err := ListMigrations(os.DirFS(filepath.Join(migrationsDir, driver)))
		if err != nil {
			return nil, err
		}
		for _, e := range existing {
			if e.Version > next {
				next = e.Version
			}
		}
	}
	next++

	created := make([]*MigrationFile, 0, 2)
	for _, driver := range []string{DriverSQLite, DriverPostgres} {
		dir := filepath.Join(migrationsDir, driver)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create migrations directory: %w", err)
		}

		base := fmt.Sprintf("%06d_%s", next, slug)
		mf := &MigrationFile{
			Version:     next,
			Name:        slug,
			Driver:      driver,
			Description: description,
			Timestamp:   now.UTC().Format(time.RFC3339),
			UpPath:      filepath.Join(dir, base+".up.sql"),
			DownPath:    filepath.Join(dir, base+".down.sql"),
		}

		if err := createMigrationFile(mf.UpPath, migrationUpTemplate, mf); err != nil {
			removeCreated(created)
			return nil, fmt.Errorf("failed to create up migration: %w", err)
		}
		if err := createMigrationFile(mf.DownPath, migrationDownTemplate, mf); err != nil {
			_ = os.Remove(mf.UpPath)
			removeCreated(created)
			return nil, fmt.Errorf("failed to create down migration: %w", err)
		}
		created = append(created, mf)
	}

	return created, nil
}

func removeCreated(files []*MigrationFile) {
	for _, f := range files {
		_ = os.Remove(f.UpPath)
		_ = os.Remove(f.DownPath)
	}
}

func createMigrationFile(path, tmplContent string, data *MigrationFile) error {
	tmpl, err := template.New("migration").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return nil
}

// sanitizeName lowercases name and collapses separators into single underscores.
func sanitizeName(name string) string {
	result := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			result = append(result, c)
		case c >= 'A' && c <= 'Z':
			result = append(result, c+'a'-'A')
		case c == ' ' || c == '-' || c == '_':
			if len(result) > 0 && result[len(result)-1] != '_' {
				result = append(result, '_')
			}
		}
	}
	return strings.TrimSuffix(string(result), "_")
}

// ListMigrations returns the up migrations in fsys ordered by version.
// Files that do not follow the NNNNNN_name.up.sql layout are ignored.
func ListMigrations(fsys fs.FS) ([]MigrationFile, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []MigrationFile{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	migrations := make([]MigrationFile, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		base := strings.TrimSuffix(entry.Name(), ".up.sql")
		prefix, name, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		migrations = append(migrations, MigrationFile{
			Version:  uint(version),
			Name:     name,
			UpPath:   entry.Name(),
			DownPath: base + ".down.sql",
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}
