// Command memctl is the command-line surface over a memcore memory store:
// recording events, querying records, snapshotting/restoring state, and
// inspecting the symbolic graph.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Best-effort: a missing .env is not an error, matching the teacher's
	// own godotenv.Load() use in its (now removed) interactive shell
	// entrypoint, which only wanted OPENAI_API_KEY when present.
	_ = godotenv.Load()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
