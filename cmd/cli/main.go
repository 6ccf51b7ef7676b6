// Command traction-engine reads a SimulationInput JSON from a file argument
// (or stdin), runs the simulation, and writes the SimulationLog JSON to
// stdout. Logs go to stderr; TRACTION_LOG_LEVEL and TRACTION_LOG_FORMAT
// select their verbosity and encoding.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/cxd309/traction-engine/internal/config"
	"github.com/cxd309/traction-engine/internal/engine"
	"github.com/cxd309/traction-engine/internal/logging"
)

func main() {
	settings, err := config.LoadService("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading settings: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(os.Stderr, settings.LogFormat, settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}

	var data []byte
	if len(os.Args) > 1 {
		data, err = os.ReadFile(os.Args[1])
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading input: %v\n", err)
		os.Exit(1)
	}

	result, err := engine.RunJSON(string(data), engine.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(result)
}
