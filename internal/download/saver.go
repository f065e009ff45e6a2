package download

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmagar/anydl/internal/helpers"
)

// Saver persists an assembled payload under a suggested name and returns
// where it ended up.
type Saver interface {
	Save(name string, data []byte) (string, error)
}

// DirSaver writes payloads into Dir, creating it on first use. Existing
// files are never overwritten; a numbered name is chosen instead.
type DirSaver struct {
	Dir string
}

// Save implements Saver.
func (s DirSaver) Save(name string, data []byte) (string, error) {
	if err := helpers.ValidatePath(s.Dir); err != nil {
		return "", err
	}
	if err := helpers.MakeDirs(s.Dir); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	name = helpers.Sanitise(filepath.Base(name))
	if name == "" || name == "." {
		name = "download"
	}
	dest, err := helpers.UniquePath(s.Dir, name)
	if err != nil {
		return "", err
	}
	tmp := dest + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", tmp, err)
	}
	return dest, nil
}
