package sdktests

import (
	"errors"
	"io/fs"
	"io/ioutil"
	"path/filepath"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFound = errors.New("found")

// DoToolchainTests checks what the extraction step left in the destination directory.
func DoToolchainTests(t *T) {
	dest := t.Config().Toolchain.DestDir

	t.Run("destination directory is populated", func(t *T) {
		entries, err := ioutil.ReadDir(dest)
		require.NoError(t, err)
		assert.NotEmpty(t, entries, "nothing was extracted into %s", dest)
	})

	for _, pkg := range t.Config().Toolchain.Packages {
		pkg := pkg
		t.Run("package "+pkg+" is extracted", func(t *T) {
			path, err := findDir(dest, pkg)
			require.NoError(t, err)
			require.NotEmpty(t, path, "no directory named %s under %s", pkg, dest)
			t.Debug("found %s at %s", pkg, path)
		})
	}
}

// findDir returns the first directory named name under root, or "" if there is none.
func findDir(root, name string) (string, error) {
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == name && path != root {
			found = path
			return errFound
		}
		return nil
	})
	if err != nil && err != errFound {
		return "", err
	}
	return found, nil
}
