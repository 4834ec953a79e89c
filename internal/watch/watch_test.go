package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okra-platform/typesupport/internal/config"
	"github.com/okra-platform/typesupport/internal/generate"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGenerator records passes and optionally fails them
type countingGenerator struct {
	calls atomic.Int32
	fail  bool
}

func (g *countingGenerator) Generate(ctx context.Context) (*generate.Result, error) {
	g.calls.Add(1)
	if g.fail {
		return nil, errors.New("boom")
	}
	return &generate.Result{}, nil
}

func TestPatternsAndDirectories(t *testing.T) {
	cfg := &config.Config{
		InterfaceFiles:     []string{"/pkg/msg/Foo.msg", "/pkg/msg/Bar.msg", "/pkg/srv/Get.srv"},
		TemplateDir:        "/pkg/templates",
		TargetDependencies: []string{"/share/gen/generator.py", "/pkg/msg/extra.stamp"},
		AdditionalFiles:    []string{"/share/cmake/extra.cmake"},
	}

	assert.Equal(t, []string{"*.msg", "*.srv", "*.tmpl", "extra.cmake", "extra.stamp", "generator.py"}, Patterns(cfg))

	recursive, flat := Directories(cfg)
	assert.Equal(t, []string{"/pkg/msg", "/pkg/srv", "/pkg/templates"}, recursive)
	assert.Equal(t, []string{"/share/cmake", "/share/gen"}, flat)
}

func TestNewRunner_DefaultDebounce(t *testing.T) {
	r := NewRunner(&config.Config{}, &countingGenerator{}, 0, zerolog.Nop())
	assert.Equal(t, DefaultDebounce, r.debounce)
}

func TestRunner_Run(t *testing.T) {
	// Test plan:
	// - one pass at start
	// - a burst of writes yields one more pass after the debounce
	// - cancelling the context stops the runner without error
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dir := t.TempDir()
	msg := filepath.Join(dir, "msg", "Foo.msg")
	require.NoError(t, os.MkdirAll(filepath.Dir(msg), 0755))
	require.NoError(t, os.WriteFile(msg, []byte("int32 x\n"), 0644))

	cfg := &config.Config{InterfaceFiles: []string{msg}}
	gen := &countingGenerator{}
	runner := NewRunner(cfg, gen, 150*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- runner.Run(ctx)
	}()

	require.Eventually(t, func() bool { return gen.calls.Load() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(msg, []byte("int32 x\nint32 y\n"), 0644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return gen.calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(2), gen.calls.Load())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunner_FailedPassKeepsWatching(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{InterfaceFiles: []string{filepath.Join(dir, "Foo.msg")}}
	gen := &countingGenerator{fail: true}
	runner := NewRunner(cfg, gen, 10*time.Millisecond, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	assert.NoError(t, runner.Run(ctx))
	assert.Equal(t, int32(1), gen.calls.Load())
}
