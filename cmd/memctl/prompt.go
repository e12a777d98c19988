package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hipcortex/memcore/internal/durable"
)

func cmdPrompt(out, errOut io.Writer, args []string) int {
	fs := newFlagSet("prompt")
	store := fs.String("store", defaultStorePath, "path to the memory store file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(errOut, "error: prompt requires TEXT")
		return 1
	}
	text := strings.Join(fs.Args(), " ")

	responder, err := newResponder()
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	reply, err := responder.Reply(context.Background(), text)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	s, err := durable.NewStore(*store, 1, durable.Options{})
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer s.Close()

	metadata, err := json.Marshal(map[string]string{"prompt": text, "reply": reply})
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	rec, err := durable.Seal(durable.NewRecord(durable.RecordReflexion, "memctl", "prompt", "", metadata))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if err := s.Add(rec); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	fmt.Fprintln(out, reply)
	return 0
}
