package lattes

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNoXML reports an archive that carries no XML member.
var ErrNoXML = errors.New("no xml document in archive")

// ExtractXML opens a zip archive and returns the contents of its first XML
// member. Lattes archives carry exactly one XML résumé each; anything else
// is a recoverable per-item failure for the walker.
func ExtractXML(path string) ([]byte, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".xml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open member %s in %s: %w", f.Name, path, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read member %s in %s: %w", f.Name, path, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%s: %w", path, ErrNoXML)
}
