// Package wasmplugin adapts a strategy compiled to WebAssembly into the
// strategies.Strategy interface, using wazero as a pure-Go, cgo-free WASM
// runtime. Guest modules export contextslicer_name, which takes no arguments
// and returns a (pointer, length) pair into the guest's linear memory;
// contextslicer_execute, which takes and returns such a pair; and
// contextslicer_alloc, which the host calls to reserve guest memory for the
// input. contextslicer_execute's payload is a JSON-encoded wireContext in, a
// JSON-encoded strategies.Result out.
//
// This is the sandbox that lets strategy code be extended by externally
// loaded plugins: untrusted third-party strategy code never touches the
// host process or filesystem directly. The guest gets no inspector,
// estimator, or backend: Execute sends only the repository root, request,
// keywords, matched paths, and intensity.
package wasmplugin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/contextslicer/contextslicer/internal/engine"
	"github.com/contextslicer/contextslicer/internal/strategies"
)

// wireContext is the JSON-serializable projection of StrategyContext handed
// to a guest module; Inspector/Estimator/Backend cannot cross the WASM
// boundary, so a plugin strategy only ever sees pre-resolved data.
type wireContext struct {
	RepoRoot  string              `json:"repoRoot"`
	Request   engine.SliceRequest `json:"request"`
	Keywords  []string            `json:"keywords"`
	Matched   []string            `json:"matched"`
	Intensity engine.Intensity    `json:"intensity"`
}

// Plugin adapts one loaded WASM module to strategies.Strategy.
type Plugin struct {
	path       string
	name       string
	runtime    wazero.Runtime
	compiled   wazero.CompiledModule
	moduleName string
}

// Load compiles and instantiates the WASM module at path, calling its
// contextslicer_name export once to resolve Name().
func Load(ctx context.Context, path string) (*Plugin, error) {
	wasmBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading wasm plugin %s: %w", path, err)
	}

	runtime := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("instantiating WASI for plugin %s: %w", path, err)
	}

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("compiling wasm plugin %s: %w", path, err)
	}

	p := &Plugin{path: path, runtime: runtime, compiled: compiled, moduleName: path}

	name, err := p.callString(ctx, "contextslicer_name", nil)
	if err != nil {
		p.Close(ctx)
		return nil, fmt.Errorf("resolving plugin name for %s: %w", path, err)
	}
	p.name = name

	return p, nil
}

// Close releases the plugin's runtime resources.
func (p *Plugin) Close(ctx context.Context) error {
	return p.runtime.Close(ctx)
}

func (p *Plugin) Name() string              { return p.name }
func (p *Plugin) DefaultWeight() float64    { return 0.5 }
func (p *Plugin) DefaultBudgetCap() float64 { return 0.1 }

func (p *Plugin) IsAvailable(ctx context.Context, sc *strategies.StrategyContext) bool {
	return true
}

func (p *Plugin) Execute(ctx context.Context, sc *strategies.StrategyContext) strategies.Result {
	payload, err := json.Marshal(wireContext{
		RepoRoot:  sc.RepoRoot,
		Request:   sc.Request,
		Keywords:  sc.Keywords,
		Matched:   sc.State.Snapshot(),
		Intensity: sc.Intensity,
	})
	if err != nil {
		return strategies.Result{Warnings: []string{fmt.Sprintf("%s: encoding request: %v", p.name, err)}}
	}

	out, err := p.callString(ctx, "contextslicer_execute", payload)
	if err != nil {
		return strategies.Result{Warnings: []string{fmt.Sprintf("%s: executing plugin: %v", p.name, err)}}
	}

	var result strategies.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		return strategies.Result{Warnings: []string{fmt.Sprintf("%s: decoding plugin result: %v", p.name, err)}}
	}
	return result
}

// callString instantiates a fresh module instance, writes input into its
// linear memory (if non-nil), calls export with a (ptr, len) argument pair
// when input is provided or no arguments otherwise, and reads back the
// (ptr, len) pair the export returns.
func (p *Plugin) callString(ctx context.Context, export string, input []byte) (string, error) {
	cfg := wazero.NewModuleConfig().WithStdout(nil).WithStderr(nil)
	mod, err := p.runtime.InstantiateModule(ctx, p.compiled, cfg)
	if err != nil {
		return "", fmt.Errorf("instantiating module: %w", err)
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(export)
	if fn == nil {
		return "", fmt.Errorf("module does not export %s", export)
	}

	var args []uint64
	if input != nil {
		alloc := mod.ExportedFunction("contextslicer_alloc")
		if alloc == nil {
			return "", fmt.Errorf("module does not export contextslicer_alloc")
		}
		results, err := alloc.Call(ctx, uint64(len(input)))
		if err != nil {
			return "", fmt.Errorf("allocating guest memory: %w", err)
		}
		ptr := results[0]
		if !mod.Memory().Write(uint32(ptr), input) {
			return "", fmt.Errorf("writing input into guest memory")
		}
		args = []uint64{ptr, uint64(len(input))}
	}

	results, err := fn.Call(ctx, args...)
	if err != nil {
		return "", fmt.Errorf("calling %s: %w", export, err)
	}
	if len(results) < 2 {
		return "", fmt.Errorf("%s returned %d results, want (ptr, len)", export, len(results))
	}

	outPtr, outLen := uint32(results[0]), uint32(results[1])
	bytes, ok := mod.Memory().Read(outPtr, outLen)
	if !ok {
		return "", fmt.Errorf("reading output from guest memory")
	}
	return string(bytes), nil
}

var _ strategies.Strategy = (*Plugin)(nil)
