package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentcli/internal/errors"
	"incidentcli/internal/shared/testutil"
)

func newValidator(t *testing.T) *FileValidator {
	logger, _ := testutil.NewTestLogger(t)
	return NewFileValidator(logger)
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := newValidator(t)

	t.Run("creates missing directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		require.NoError(t, v.ValidateOutputDirectory(dir))

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "probe file must be removed")
	})

	t.Run("path blocked by file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		err := v.ValidateOutputDirectory(filepath.Join(file, "sub"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeIO))
	})
}

func TestFileValidator_ValidateTableFile(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T) string
		wantType errors.ErrorType
	}{
		{
			name: "valid csv",
			setup: func(t *testing.T) string {
				return testutil.WriteFixture(t, "in.csv", "number\nINC1\n")
			},
		},
		{
			name: "valid tsv",
			setup: func(t *testing.T) string {
				return testutil.WriteFixture(t, "in.tsv", "number\tstate\n")
			},
		},
		{
			name: "missing file",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent.csv")
			},
			wantType: errors.ErrTypeNotFound,
		},
		{
			name: "directory",
			setup: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "dir.csv")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantType: errors.ErrTypeValidation,
		},
		{
			name: "wrong extension",
			setup: func(t *testing.T) string {
				return testutil.WriteFixture(t, "in.xlsx", "PK")
			},
			wantType: errors.ErrTypeValidation,
		},
		{
			name: "empty file",
			setup: func(t *testing.T) string {
				return testutil.WriteFixture(t, "in.csv", "")
			},
			wantType: errors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator(t)
			err := v.ValidateTableFile(tt.setup(t))

			if tt.wantType == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.wantType), "got %v", err)
		})
	}
}

func TestFileValidator_ValidateWorkbookPath(t *testing.T) {
	v := newValidator(t)
	dir := t.TempDir()

	assert.NoError(t, v.ValidateWorkbookPath(filepath.Join(dir, "reports", "incident_report.xlsx")))

	err := v.ValidateWorkbookPath(filepath.Join(dir, "report.csv"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))

	err = v.ValidateWorkbookPath(filepath.Join(dir, "~$report.xlsx"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock file")
}
