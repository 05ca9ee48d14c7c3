// Package workload generates the script the target interpreter executes
// during a benchmark run: create N cooperative contexts, park them, reach a
// steady memory state, signal readiness and idle until terminated.
package workload

import (
	"bytes"
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// Spec describes a single workload: the population to allocate and the
// artifact locations the child uses to hand its identity back to the
// orchestrator.
type Spec struct {
	// Population is the number of cooperative contexts the script creates.
	Population int

	// PidURL is where the script records its own process identifier. Written
	// before ReadyURL so that an observed readiness marker implies the pid
	// record exists.
	PidURL string

	// ReadyURL is the readiness marker the orchestrator polls for.
	ReadyURL string
}

// Service renders and persists workload scripts.
type Service struct {
	fs afs.Service
}

// New creates a workload service backed by the supplied file service.
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}

// Generate renders the workload script for the supplied spec. The output is
// deterministic for a given spec.
//
// The entry routine yields on its first resume, so every context keeps a live
// suspended stack and none can be reclaimed as completed. A full collection
// cycle after allocation emulates the steady state of a long-running process.
// The final loop keeps the child alive and quiescent for sampling.
func (s *Service) Generate(spec *Spec) ([]byte, error) {
	if spec == nil {
		return nil, fmt.Errorf("workload spec was nil")
	}
	if spec.Population < 1 {
		return nil, fmt.Errorf("workload population must be >= 1, had: %d", spec.Population)
	}
	if spec.PidURL == "" || spec.ReadyURL == "" {
		return nil, fmt.Errorf("workload pid/ready locations cannot be empty")
	}
	var script bytes.Buffer
	script.WriteString("-- corobench workload (generated)\n")
	fmt.Fprintf(&script, "local n = tonumber(arg[1] or %q)\n", fmt.Sprintf("%d", spec.Population))
	script.WriteString(`
local function unit()
  coroutine.yield()
end

local pool = {}
for i = 1, n do
  local context = coroutine.create(unit)
  coroutine.resume(context)
  pool[i] = context
end

collectgarbage("collect")

local stat = assert(io.open("/proc/self/stat", "r"))
local pid = stat:read("*n")
stat:close()

`)
	fmt.Fprintf(&script, "local record = assert(io.open(%q, \"w\"))\n", spec.PidURL)
	script.WriteString("record:write(tostring(pid))\nrecord:close()\n\n")
	fmt.Fprintf(&script, "local marker = assert(io.open(%q, \"w\"))\n", spec.ReadyURL)
	script.WriteString(`marker:write("ready")
marker:close()

while true do
  os.execute("sleep 1")
end
`)
	return script.Bytes(), nil
}

// Write renders the script and uploads it to the given URL.
func (s *Service) Write(ctx context.Context, URL string, spec *Spec) error {
	script, err := s.Generate(spec)
	if err != nil {
		return err
	}
	if err := s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(script)); err != nil {
		return fmt.Errorf("failed to write workload %s: %w", URL, err)
	}
	return nil
}
