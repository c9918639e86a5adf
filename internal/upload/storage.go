package upload

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Anuragsahu418/Educhat/internal/ierr"
)

// URLPrefix is where stored files are served from.
const URLPrefix = "/uploads/"

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".pdf":  {},
	".docx": {},
}

// Storage writes uploaded files to a local directory under random names.
type Storage struct {
	logger *zap.Logger
	dir    string
}

func NewStorage(logger *zap.Logger, dir string) (*Storage, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, err
	}

	return &Storage{
		logger: logger,
		dir:    dir,
	}, nil
}

func (s *Storage) Dir() string {
	return s.dir
}

// Save stores the file and returns the URL path it will be served at. The
// original filename only contributes its extension.
func (s *Storage) Save(filename string, r io.Reader) (string, error) {
	extension := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[extension]; !ok {
		return "", ierr.New(ierr.ErrorCodeInvalidArgument,
			errors.New("unsupported file type: "+extension))
	}

	name := uuid.NewString() + extension
	path := filepath.Join(s.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	_, err = io.Copy(file, r)
	if err != nil {
		os.Remove(path)

		return "", err
	}

	s.logger.Debug("file stored",
		zap.String("name", name))

	return URLPrefix + name, nil
}
