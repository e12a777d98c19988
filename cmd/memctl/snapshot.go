package main

import (
	"fmt"
	"io"

	"github.com/hipcortex/memcore/internal/durable"
)

func cmdSnapshot(out, errOut io.Writer, args []string) int {
	fs := newFlagSet("snapshot")
	store := fs.String("store", defaultStorePath, "path to the memory store file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "error: snapshot requires exactly one TAG argument")
		return 1
	}
	tag := fs.Arg(0)

	s, err := durable.NewStore(*store, 1, durable.Options{})
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer s.Close()

	snapPath := *store + "." + tag + ".snapshot.jsonl"
	archivePath := *store + "." + tag + ".snapshot.tar.gz"
	if err := s.SnapshotArchive(snapPath, archivePath); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	fmt.Fprintln(out, archivePath)
	return 0
}

func cmdRestore(out, errOut io.Writer, args []string) int {
	fs := newFlagSet("restore")
	store := fs.String("store", defaultStorePath, "path to the memory store file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "error: restore requires exactly one TAG argument")
		return 1
	}
	tag := fs.Arg(0)

	s, err := durable.NewStore(*store, 1, durable.Options{})
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer s.Close()

	snapPath := *store + "." + tag + ".snapshot.jsonl"
	if err := s.Rollback(snapPath); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	fmt.Fprintf(out, "restored %d records\n", len(s.All()))
	return 0
}
