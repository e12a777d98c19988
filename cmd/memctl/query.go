package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hipcortex/memcore/internal/durable"
)

func cmdQuery(out, errOut io.Writer, args []string) int {
	fs := newFlagSet("query")
	store := fs.String("store", defaultStorePath, "path to the memory store file")
	recordType := fs.String("type", "", "filter by record type")
	actor := fs.String("actor", "", "filter by actor")
	target := fs.String("target", "", "filter by target")
	query := fs.String("query", "", "free-text substring match over actor/action/target")
	since := fs.String("since", "", "only records at or after this RFC3339 timestamp")
	page := fs.Int("page", 0, "page number (0-indexed)")
	pageSize := fs.Int("page-size", 50, "records per page")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	if *pageSize <= 0 {
		fmt.Fprintln(errOut, "error: --page-size must be positive")
		return 1
	}
	var sinceTime time.Time
	if *since != "" {
		t, err := time.Parse(time.RFC3339, *since)
		if err != nil {
			fmt.Fprintln(errOut, "error: --since must be RFC3339:", err)
			return 1
		}
		sinceTime = t
	}

	s, err := durable.NewStore(*store, 1, durable.Options{})
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	defer s.Close()

	var records []durable.MemoryRecord
	switch {
	case *actor != "":
		records = s.FindByActor(*actor)
	case *target != "":
		records = s.FindByTarget(*target)
	default:
		records = s.All()
	}
	if *recordType != "" {
		records = filterByType(records, durable.RecordType(*recordType))
	}
	if *query != "" {
		records = filterByQuery(records, *query)
	}
	if !sinceTime.IsZero() {
		records = filterSince(records, sinceTime)
	}

	start := *page * *pageSize
	if start >= len(records) {
		return 0
	}
	end := start + *pageSize
	if end > len(records) {
		end = len(records)
	}

	enc := json.NewEncoder(out)
	for _, r := range records[start:end] {
		if err := enc.Encode(r); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return 1
		}
	}
	return 0
}

func filterByType(records []durable.MemoryRecord, t durable.RecordType) []durable.MemoryRecord {
	out := make([]durable.MemoryRecord, 0, len(records))
	for _, r := range records {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out
}

// filterByQuery keeps records whose actor, action, or target contains query
// as a case-insensitive substring.
func filterByQuery(records []durable.MemoryRecord, query string) []durable.MemoryRecord {
	q := strings.ToLower(query)
	out := make([]durable.MemoryRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Actor), q) ||
			strings.Contains(strings.ToLower(r.Action), q) ||
			strings.Contains(strings.ToLower(r.Target), q) {
			out = append(out, r)
		}
	}
	return out
}

func filterSince(records []durable.MemoryRecord, since time.Time) []durable.MemoryRecord {
	out := make([]durable.MemoryRecord, 0, len(records))
	for _, r := range records {
		if !r.Timestamp.Before(since) {
			out = append(out, r)
		}
	}
	return out
}
