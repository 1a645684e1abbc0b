package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvimport/internal/core"
	"github.com/JonMunkholm/csvimport/internal/store"
)

const header = "Id,Name,Surname,Initials,Age,DateOfBirth"

// setupEnv points the CLI at a fresh SQLite database and returns its path.
func setupEnv(t *testing.T) (dir, dbPath string) {
	t.Helper()

	dir = t.TempDir()
	dbPath = filepath.Join(dir, "output", "test.db")
	t.Setenv("DATABASE_URL", dbPath)
	t.Setenv("DB_URL", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_TABLE", "")
	t.Setenv("UPLOAD_ARTIFACT_PATH", filepath.Join(dir, "uploaded.csv"))
	t.Setenv("LOG_LEVEL", "error")
	return dir, dbPath
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	importFlags.raw = false
	importFlags.contentType = ""
	require.NoError(t, rootCmd.PersistentFlags().Set("env-file", ".env"))
	require.NoError(t, rootCmd.PersistentFlags().Set("verbose", "false"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func tableRows(t *testing.T, dbPath, table string) []core.ImportedRow {
	t.Helper()

	db, dialect, err := store.Open(context.Background(), store.Config{URL: dbPath})
	require.NoError(t, err)
	defer db.Close()

	l, err := core.NewLoader(db, dialect, core.LoaderConfig{Table: table})
	require.NoError(t, err)
	rows, err := l.Rows(context.Background())
	require.NoError(t, err)
	return rows
}

func TestImportCmd_PlainCSV(t *testing.T) {
	dir, dbPath := setupEnv(t)
	file := writeFile(t, dir, "people.csv", header+"\n1,Ann,Lee,AL,30,1994-01-01\n2,Bob,Ray,BR,41,1983-05-05\n")

	out, err := runCLI(t, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "CSV uploaded and inserted 2 rows into csv_import.")

	rows := tableRows(t, dbPath, "csv_import")
	require.Len(t, rows, 2)
	assert.Equal(t, "Bob", rows[1].Name)

	saved, err := os.ReadFile(filepath.Join(dir, "uploaded.csv"))
	require.NoError(t, err)
	assert.Equal(t, header+"\n1,Ann,Lee,AL,30,1994-01-01\n2,Bob,Ray,BR,41,1983-05-05\n", string(saved))
}

func TestImportCmd_RawBody(t *testing.T) {
	dir, dbPath := setupEnv(t)
	boundary := "----WebKitFormBoundary7MA4YWxkTrZu0gW"
	body := "--" + boundary + "\r\n" +
		"Content-Disposition: form-data; name=\"file\"; filename=\"people.csv\"\r\n" +
		"Content-Type: text/csv\r\n\r\n" +
		header + "\r\n7,Cid,Moe,CM,22,2002-02-02\r\n" +
		"--" + boundary + "--\r\n"
	file := writeFile(t, dir, "body.bin", body)

	out, err := runCLI(t, "import", "--raw", file)
	require.NoError(t, err)
	assert.Contains(t, out, "inserted 1 rows")

	rows := tableRows(t, dbPath, "csv_import")
	require.Len(t, rows, 1)
	assert.Equal(t, core.ImportedRow{ID: 7, Name: "Cid", Surname: "Moe", Initials: "CM", Age: 22, DateOfBirth: "2002-02-02"}, rows[0])
}

func TestImportCmd_ContentTypeCharset(t *testing.T) {
	dir, dbPath := setupEnv(t)
	file := writeFile(t, dir, "latin1.csv", header+"\n1,Ren\xe9e,Lee,RL,30,x\n")

	_, err := runCLI(t, "import", "--content-type", "text/csv; charset=windows-1252", file)
	require.NoError(t, err)

	rows := tableRows(t, dbPath, "csv_import")
	require.Len(t, rows, 1)
	assert.Equal(t, "Renée", rows[0].Name)
}

func TestImportCmd_EnvFile(t *testing.T) {
	dir, dbPath := setupEnv(t)
	envFile := writeFile(t, dir, "test.env", "DB_TABLE=people\n")
	file := writeFile(t, dir, "people.csv", header+"\n1,Ann,Lee,AL,30,x\n")

	out, err := runCLI(t, "import", "--env-file", envFile, file)
	require.NoError(t, err)
	assert.Contains(t, out, "into people.")

	assert.Len(t, tableRows(t, dbPath, "people"), 1)
}

func TestImportCmd_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T, dir string) []string
		wantExit int
	}{
		{
			name: "invalid age",
			setup: func(t *testing.T, dir string) []string {
				return []string{"import", writeFile(t, dir, "bad.csv", header+"\n1,Ann,Lee,AL,,x\n")}
			},
			wantExit: ExitDataRejected,
		},
		{
			name: "empty file",
			setup: func(t *testing.T, dir string) []string {
				return []string{"import", writeFile(t, dir, "empty.csv", "")}
			},
			wantExit: ExitDataRejected,
		},
		{
			name: "blank file",
			setup: func(t *testing.T, dir string) []string {
				return []string{"import", writeFile(t, dir, "blank.csv", "\n  \n")}
			},
			wantExit: ExitDataRejected,
		},
		{
			name: "raw body cut off after headers",
			setup: func(t *testing.T, dir string) []string {
				body := "------WebKitFormBoundary7MA4YWxkTrZu0gW\r\n" +
					"Content-Disposition: form-data; name=\"file\"; filename=\"people.csv\"\r\n\r\n" +
					header + "\r\n1,Ann"
				return []string{"import", "--raw", writeFile(t, dir, "cut.bin", body)}
			},
			wantExit: ExitDataRejected,
		},
		{
			name: "missing file",
			setup: func(t *testing.T, dir string) []string {
				return []string{"import", filepath.Join(dir, "nope.csv")}
			},
			wantExit: ExitGeneralError,
		},
		{
			name: "no argument",
			setup: func(*testing.T, string) []string {
				return []string{"import"}
			},
			wantExit: ExitUsageError,
		},
		{
			name: "bad table name",
			setup: func(t *testing.T, dir string) []string {
				t.Setenv("DB_TABLE", "csv-import")
				return []string{"import", writeFile(t, dir, "ok.csv", header)}
			},
			wantExit: ExitConfigError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, _ := setupEnv(t)

			_, err := runCLI(t, tt.setup(t, dir)...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, ExitCodeForError(err), "error: %v", err)
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"config", fmt.Errorf("%w: bad", ErrInvalidConfig), ExitConfigError},
		{"busy", core.ErrImportBusy, ExitBusy},
		{"field type", &core.ImportError{Kind: core.KindFieldType, Err: errors.New("x")}, ExitDataRejected},
		{"decode", &core.ImportError{Kind: core.KindDecode, Err: errors.New("x")}, ExitDataRejected},
		{"truncated", &core.ImportError{Kind: core.KindTruncated, Err: errors.New("x")}, ExitDataRejected},
		{"storage", &core.ImportError{Kind: core.KindStorage, Err: errors.New("x")}, ExitDatabaseError},
		{"artifact", &core.ImportError{Kind: core.KindArtifact, Err: errors.New("x")}, ExitGeneralError},
		{"unknown flag", errors.New("unknown flag: --nope"), ExitUsageError},
		{"other", errors.New("boom"), ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeForError(tt.err))
		})
	}
}

func TestServeCmd_RejectsArgs(t *testing.T) {
	err := serveCmd.Args(serveCmd, []string{"extra"})
	assert.Error(t, err)
}
