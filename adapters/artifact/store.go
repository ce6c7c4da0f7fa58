package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"creditrisk/domain/artifact"
	"creditrisk/domain/core"
	"creditrisk/internal/errors"
	"creditrisk/internal/logging"
)

// FileExt is the extension of stored artifact files
const FileExt = ".crmodel"

// FileStore keeps one artifact file per ID under a base directory
type FileStore struct {
	basePath string
	logger   logging.Logger
}

// NewFileStore creates the base directory if needed
func NewFileStore(basePath string, logger logging.Logger) (*FileStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to create artifact directory %s", basePath), err)
	}
	return &FileStore{basePath: basePath, logger: logging.OrNop(logger)}, nil
}

// Save writes the artifact and returns its path. The file is written to a
// temporary name first so readers never see a partial artifact.
func (s *FileStore) Save(ctx context.Context, a *artifact.ModelArtifact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, err := s.idToPath(a.ID)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.basePath, ".artifact-*")
	if err != nil {
		return "", errors.IOError("failed to create temporary artifact file", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, a); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", errors.IOError("failed to close temporary artifact file", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", errors.IOError(fmt.Sprintf("failed to move artifact into %s", path), err)
	}

	s.logger.Info("Saved artifact %s (%s) to %s", a.ID, a.Name, path)
	return path, nil
}

// Load reads the artifact with the given ID
func (s *FileStore) Load(ctx context.Context, id core.ArtifactID) (*artifact.ModelArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.idToPath(id)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads an artifact from an explicit path
func LoadFile(path string) (*artifact.ModelArtifact, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("artifact %s", path))
		}
		return nil, errors.IOError(fmt.Sprintf("failed to open artifact %s", path), err)
	}
	defer file.Close()

	a, err := Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "artifact %s", path)
	}
	return a, nil
}

// List returns the stored artifact IDs in sorted order
func (s *FileStore) List(ctx context.Context) ([]core.ArtifactID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, errors.IOError(fmt.Sprintf("failed to list %s", s.basePath), err)
	}

	var ids []core.ArtifactID
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), FileExt) {
			continue
		}
		ids = append(ids, core.ArtifactID(strings.TrimSuffix(e.Name(), FileExt)))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Delete removes an artifact; deleting an unknown ID is NOT_FOUND
func (s *FileStore) Delete(ctx context.Context, id core.ArtifactID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.idToPath(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound(fmt.Sprintf("artifact %s", id))
		}
		return errors.IOError(fmt.Sprintf("failed to delete %s", path), err)
	}
	return nil
}

// idToPath maps an ID to its file, refusing IDs that would escape the
// base directory
func (s *FileStore) idToPath(id core.ArtifactID) (string, error) {
	name := id.String()
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", errors.InvalidArgument("invalid artifact id %q", name)
	}
	return filepath.Join(s.basePath, name+FileExt), nil
}
