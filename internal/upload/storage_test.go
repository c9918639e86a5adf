package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestStorageSave(t *testing.T) {
	storage, err := NewStorage(zap.NewNop(), t.TempDir())
	assert.NoError(t, err)

	url, err := storage.Save("photo.PNG", strings.NewReader("image-bytes"))
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, URLPrefix))
	assert.True(t, strings.HasSuffix(url, ".png"))

	name := strings.TrimPrefix(url, URLPrefix)
	content, err := os.ReadFile(filepath.Join(storage.Dir(), name))
	assert.NoError(t, err)
	assert.Equal(t, "image-bytes", string(content))

	// Two saves of the same filename never collide.
	other, err := storage.Save("photo.PNG", strings.NewReader("other"))
	assert.NoError(t, err)
	assert.NotEqual(t, url, other)
}

func TestStorageRejectsUnknownExtension(t *testing.T) {
	storage, err := NewStorage(zap.NewNop(), t.TempDir())
	assert.NoError(t, err)

	_, err = storage.Save("payload.exe", strings.NewReader("nope"))
	assert.Error(t, err)

	entries, err := os.ReadDir(storage.Dir())
	assert.NoError(t, err)
	assert.Len(t, entries, 0)
}
