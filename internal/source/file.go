// Package source loads a snapshot.State from an external document, either a
// local JSON file or a remote HTTP endpoint, adapting the teacher's Jira
// client idioms (warn-and-skip JSON-file loading, cookie-authenticated GET)
// to this core's generic snapshot shape.
package source

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"deliverycore/internal/snapshot"
)

// document is the on-disk/wire shape of a snapshot, matching
// snapshot.Input's field names so json tags are stable across the file and
// HTTP sources.
type document struct {
	GeneratedAt  int64                          `json:"generated_at"`
	Milestones   []snapshot.Milestone           `json:"milestones"`
	WorkItems    []snapshot.WorkItem            `json:"work_items"`
	Dependencies []snapshot.Dependency          `json:"dependencies"`
	Risks        []snapshot.Risk                `json:"risks"`
	Decisions    []snapshot.Decision            `json:"decisions"`
	Issues       []snapshot.Issue               `json:"issues"`
	TeamHistory  []snapshot.ExternalTeamHistory `json:"team_history"`
	Actors       []snapshot.Actor               `json:"actors"`
}

func (d document) toInput() snapshot.Input {
	generatedAt := d.GeneratedAt
	if generatedAt == 0 {
		generatedAt = time.Now().Unix()
	}
	return snapshot.Input{
		GeneratedAt:  generatedAt,
		Milestones:   d.Milestones,
		WorkItems:    d.WorkItems,
		Dependencies: d.Dependencies,
		Risks:        d.Risks,
		Decisions:    d.Decisions,
		Issues:       d.Issues,
		TeamHistory:  d.TeamHistory,
		Actors:       d.Actors,
	}
}

// FileSource loads a snapshot document from a single local JSON file. A
// malformed document, or any entity that snapshot.New rejects, fails the
// whole load; no record is skipped. The loader never mutates the file.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Load() (*snapshot.State, error) {
	const op = "source.FileSource.Load"

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, snapshot.NotFoundf(op, "snapshot file %q does not exist", f.Path)
		}
		return nil, snapshot.Wrap(snapshot.KindInternalInvariant, op, "reading snapshot file", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, snapshot.InvalidInputf(op, "snapshot file %q is not valid JSON: %v", f.Path, err)
	}

	log.Debug().Str("path", f.Path).Int("milestones", len(doc.Milestones)).
		Int("work_items", len(doc.WorkItems)).Msg("loaded snapshot from file")

	state, err := snapshot.New(doc.toInput())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return state, nil
}
