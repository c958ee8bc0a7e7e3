package shader

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/krite/igl/graphics"
)

// Source describes one WGSL file to load into a Library.
type Source struct {
	// Key is the unique identifier the shader is stored under.
	Key string

	// Stage is the pipeline stage to reflect for.
	Stage graphics.ShaderStage

	// Path is the WGSL source file path.
	Path string
}

// library is the implementation of the Library interface.
type library struct {
	mu      sync.RWMutex
	shaders map[string]Shader
	pool    worker.DynamicWorkerPool
}

// Library loads and caches parsed shaders. Load fans file reading and parsing
// out over a reusable worker pool, which matters at startup when a renderer
// pulls in dozens of WGSL files at once.
type Library interface {
	// Load reads, parses, and caches every source. Parsing runs concurrently;
	// Load returns once all sources finished. Sources that fail to read are
	// reported together and the remaining sources still load.
	//
	// Parameters:
	//   - sources: the WGSL files to load
	//
	// Returns:
	//   - error: nil, or the joined read errors
	Load(sources ...Source) error

	// Shader retrieves a previously loaded shader by key.
	//
	// Parameters:
	//   - key: the key the shader was loaded under
	//
	// Returns:
	//   - Shader: the shader, meaningful only when found
	//   - bool: false if no shader with that key is loaded
	Shader(key string) (Shader, bool)

	// Reflection merges the reflected uniform interfaces of the shaders with the
	// given keys, in argument order. Unknown keys are skipped.
	//
	// Parameters:
	//   - keys: the loaded shader keys to merge
	//
	// Returns:
	//   - graphics.PipelineReflection: the merged reflection
	Reflection(keys ...string) graphics.PipelineReflection
}

var _ Library = &library{}

// NewLibrary creates a shader library backed by a dynamic worker pool.
//
// Parameters:
//   - workers: the maximum number of concurrent parse workers
//
// Returns:
//   - Library: the empty library
func NewLibrary(workers int) Library {
	if workers < 1 {
		workers = 1
	}
	return &library{
		shaders: make(map[string]Shader),
		pool:    worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
	}
}

func (l *library) Load(sources ...Source) error {
	// A WaitGroup provides the completion barrier since pool.Wait() blocks
	// until workers idle-exit, which is unsuitable for call-scoped loads.
	var wg sync.WaitGroup
	errs := make([]error, len(sources))

	for i, src := range sources {
		wg.Add(1)
		idx := i
		source := src
		l.pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()

				data, err := os.ReadFile(source.Path)
				if err != nil {
					errs[idx] = fmt.Errorf("shader %q: %w", source.Key, err)
					return nil, err
				}
				parsed := NewShaderFromSource(source.Key, source.Stage, string(data))

				l.mu.Lock()
				l.shaders[source.Key] = parsed
				l.mu.Unlock()
				return nil, nil
			},
		})
	}

	wg.Wait()
	return errors.Join(errs...)
}

func (l *library) Shader(key string) (Shader, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s, ok := l.shaders[key]
	return s, ok
}

func (l *library) Reflection(keys ...string) graphics.PipelineReflection {
	l.mu.RLock()
	defer l.mu.RUnlock()
	shaders := make([]Shader, 0, len(keys))
	for _, key := range keys {
		if s, ok := l.shaders[key]; ok {
			shaders = append(shaders, s)
		}
	}
	return NewPipelineReflection(shaders...)
}
