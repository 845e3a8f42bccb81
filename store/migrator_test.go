package store

import (
	"reflect"
	"testing"
)

func TestShouldApplyMigration(t *testing.T) {
	tests := []struct {
		fileVersion      string
		currentDBVersion string
		targetVersion    string
		want             bool
	}{
		// Fresh installation: every file up to the target applies.
		{"0.1.1", "", "0.3.1", true},
		{"0.3.1", "", "0.3.1", true},
		// Already applied files are skipped.
		{"0.1.1", "0.2.0", "0.3.1", false},
		{"0.2.0", "0.2.0", "0.3.1", false},
		// Files between current and target apply.
		{"0.2.1", "0.2.0", "0.3.1", true},
		{"0.3.1", "0.3.0", "0.3.1", true},
		// Files beyond the target never apply.
		{"0.4.0", "0.2.0", "0.3.1", false},
		// Default version behaves like a fresh installation.
		{"0.1.1", "0.0.0", "0.3.1", true},
	}
	for _, tt := range tests {
		got := shouldApplyMigration(tt.fileVersion, tt.currentDBVersion, tt.targetVersion)
		if got != tt.want {
			t.Errorf("shouldApplyMigration(%q, %q, %q) = %v, want %v",
				tt.fileVersion, tt.currentDBVersion, tt.targetVersion, got, tt.want)
		}
	}
}

func TestValidateMigrationFileName(t *testing.T) {
	valid := []string{
		"00__add_updated_ts_index.sql",
		"1__create_table.sql",
		"12__whatever.sql",
	}
	for _, filename := range valid {
		if err := validateMigrationFileName(filename); err != nil {
			t.Errorf("validateMigrationFileName(%q) = %v, want nil", filename, err)
		}
	}

	invalid := []string{
		"add_updated_ts_index.sql",
		"abc__description.sql",
		"_0_description.sql",
	}
	for _, filename := range invalid {
		if err := validateMigrationFileName(filename); err == nil {
			t.Errorf("validateMigrationFileName(%q) = nil, want error", filename)
		}
	}
}

func TestGetSchemaVersionOrDefault(t *testing.T) {
	if got := getSchemaVersionOrDefault(""); got != "0.0.0" {
		t.Errorf("getSchemaVersionOrDefault(\"\") = %q, want \"0.0.0\"", got)
	}
	if got := getSchemaVersionOrDefault("0.2.1"); got != "0.2.1" {
		t.Errorf("getSchemaVersionOrDefault(\"0.2.1\") = %q, want \"0.2.1\"", got)
	}

	if !isVersionEmpty("") || !isVersionEmpty("0.0.0") {
		t.Error("empty and default versions should read as empty")
	}
	if isVersionEmpty("0.3.1") {
		t.Error("a real version should not read as empty")
	}
}

func TestSplitSQL(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "single statement",
			script: "CREATE TABLE study_state (key TEXT PRIMARY KEY);",
			want:   []string{"CREATE TABLE study_state (key TEXT PRIMARY KEY);"},
		},
		{
			name:   "multiple statements",
			script: "CREATE TABLE a (x INT);\nCREATE INDEX idx_a ON a (x);",
			want:   []string{"CREATE TABLE a (x INT);", "CREATE INDEX idx_a ON a (x);"},
		},
		{
			name:   "line comments are dropped",
			script: "-- schema for study state\nCREATE TABLE a (x INT);",
			want:   []string{"CREATE TABLE a (x INT);"},
		},
		{
			name:   "semicolon inside string literal",
			script: "INSERT INTO study_state (key, value) VALUES ('progress', '{\"a\";1}');",
			want:   []string{"INSERT INTO study_state (key, value) VALUES ('progress', '{\"a\";1}');"},
		},
		{
			name:   "trailing statement without semicolon",
			script: "CREATE TABLE a (x INT)",
			want:   []string{"CREATE TABLE a (x INT)"},
		},
		{
			name:   "blank script",
			script: "\n\n  \n",
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitSQL(tt.script)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitSQL() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEmbeddedMigrationFiles(t *testing.T) {
	// Both dialects must ship a full schema plus the incremental files that
	// make up the current schema version.
	for _, path := range []string{
		"migration/sqlite/LATEST.sql",
		"migration/postgres/LATEST.sql",
		"migration/sqlite/0.3/00__add_updated_ts_index.sql",
		"migration/postgres/0.3/00__add_updated_ts_index.sql",
	} {
		if _, err := migrationFS.ReadFile(path); err != nil {
			t.Errorf("missing embedded migration file %s: %v", path, err)
		}
	}
	if _, err := seedFS.ReadFile("seed/sqlite/01__demo_state.sql"); err != nil {
		t.Errorf("missing embedded seed file: %v", err)
	}
}
