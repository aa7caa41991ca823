// Command drft is the module's own thin CLI entrypoint. The stack-loading
// mechanism a real front-end would use (discovering and subprocess-running
// a user's stack definition file) stays external per the engine's own
// scope; this binary just wires a small demo stack in Go code and
// dispatches the process args through internal/cli, the same entry point a
// real loader would call once it has built its own Stack value.
package main

import (
	"context"
	"os"

	"github.com/drft-io/drft/internal/cli"
	"github.com/drft-io/drft/internal/logging"
	"github.com/drft-io/drft/internal/provider"
	"github.com/drft-io/drft/internal/resource"
	"github.com/drft-io/drft/internal/serializer"
	"github.com/drft-io/drft/internal/stack"
	"github.com/drft-io/drft/internal/state"
	"github.com/drft-io/drft/providers/memory"
)

// Endpoint is a demo resource type: a named HTTP endpoint managed entirely
// in-process by providers/memory. A real stack registers its own resource
// and state types the same way, via serializer.Registry.Register.
type Endpoint struct {
	resource.Base `drft:"-"`
	URL           string `drft:"url"`
}

func main() {
	logging.InitFromEnv()

	reg := serializer.NewRegistry()
	resource.RegisterBuiltins(reg)
	reg.Register("endpoint", Endpoint{})
	reg.Register("memoryState", memory.State{})

	statePath, err := state.ResolvePath(".drft/state.json")
	if err != nil {
		logging.Error("resolve state path", "err", err)
		os.Exit(cli.ExitError)
	}
	backend := state.NewFileBackend(statePath, reg)

	api := &Endpoint{Base: resource.NewBase("api"), URL: "https://api.example.com"}
	web := &Endpoint{Base: resource.NewBase("web", api), URL: "https://web.example.com"}

	st := stack.New("demo", []provider.Provider{memory.New()}, []resource.Resource{api, web}, backend)

	os.Exit(cli.Dispatch(context.Background(), st, reg, os.Args[1:]))
}
