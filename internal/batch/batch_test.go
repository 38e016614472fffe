package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"image_conversion/entity"
	"image_conversion/pkg/logger"
)

type recordingUsecase struct {
	mu   sync.Mutex
	seen []string
	fail string // filename that should fail
}

func (r *recordingUsecase) Convert(_ context.Context, req entity.ConversionRequest) (entity.ConversionResult, error) {
	r.mu.Lock()
	r.seen = append(r.seen, req.Filename)
	r.mu.Unlock()

	if req.Filename == r.fail {
		return entity.ConversionResult{}, entity.ErrDecode
	}
	return entity.ConversionResult{
		Filename:    strings.TrimSuffix(req.Filename, filepath.Ext(req.Filename)) + ".jpg",
		ContentType: "image/jpeg",
		Data:        []byte("converted:" + req.Filename),
	}, nil
}

func (r *recordingUsecase) AvailablePermits() int { return 0 }

func TestRunConvertsDirectory(t *testing.T) {
	inDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")

	for _, name := range []string{"a.png", "b.png", "broken.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(inDir, name), []byte(name), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(inDir, "subdir"), 0o755))

	cu := &recordingUsecase{fail: "broken.png"}
	r := NewRunner(cu, logger.New("error"), 85, 2)

	require.NoError(t, r.Run(context.Background(), inDir, outDir))

	assert.Len(t, cu.seen, 3, "directories are skipped")

	for _, name := range []string{"a.jpg", "b.jpg"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data)
	}

	_, err := os.Stat(filepath.Join(outDir, "broken.jpg"))
	assert.True(t, os.IsNotExist(err), "failed conversion writes nothing")
}

func TestRunMissingInputDir(t *testing.T) {
	r := NewRunner(&recordingUsecase{}, logger.New("error"), 85, 2)
	err := r.Run(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
}
