package main

import (
	"fmt"
	"io"

	"github.com/hipcortex/memcore/internal/durable"
)

func cmdAdd(out, errOut io.Writer, args []string) int {
	fs := newFlagSet("add")
	store := fs.String("store", defaultStorePath, "path to the memory store file")
	actor := fs.String("actor", "", "actor performing the action")
	action := fs.String("action", "", "action performed")
	target := fs.String("target", "", "target of the action")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if *actor == "" || *action == "" {
		fmt.Fprintln(errOut, "error: --actor and --action are required")
		return 1
	}

	s, err := durable.NewStore(*store, 1, durable.Options{})
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer s.Close()

	rec, err := durable.Seal(durable.NewRecord(durable.RecordPerception, *actor, *action, *target, nil))
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if err := s.Add(rec); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	fmt.Fprintln(out, rec.ID)
	return 0
}
