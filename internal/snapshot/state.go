package snapshot

import "sort"

// State is the immutable, fully-indexed view of a portfolio at one instant.
// Every field is read-only once constructed via New; nothing in the forecast
// or rule engines ever mutates a State.
type State struct {
	GeneratedAt  int64 // unix seconds; used only for singleflight cache keys
	milestones   map[string]Milestone
	workItems    map[string]WorkItem
	dependencies map[string]Dependency
	risks        map[string]Risk
	decisions    map[string]Decision
	issues       map[string]Issue
	teamHistory  map[string]ExternalTeamHistory
	actors       map[string]Actor

	// depsByFrom indexes Dependency.ID by the work item that depends on
	// something else (the "from" / blocked side of the edge).
	depsByFrom map[string][]string
	// depsByTo indexes Dependency.ID by the work item being depended on
	// (the "to" / blocking side of the edge).
	depsByTo map[string][]string
	// risksByWorkItem indexes risk ids touching a given work item, via
	// either Impact.BlockedItem or AffectedIDs membership.
	risksByWorkItem map[string][]string
}

// Input is the plain, unindexed payload a source loader (internal/source)
// produces; New builds the indexed State from it.
type Input struct {
	Milestones   []Milestone
	WorkItems    []WorkItem
	Dependencies []Dependency
	Risks        []Risk
	Decisions    []Decision
	Issues       []Issue
	TeamHistory  []ExternalTeamHistory
	Actors       []Actor
	GeneratedAt  int64
}

// New builds an indexed, validated State from in. It returns an
// InvalidInput error for duplicate ids or dangling references and an
// InvalidGraph error for dependency edges naming unknown work items.
func New(in Input) (*State, error) {
	const op = "snapshot.New"

	s := &State{
		GeneratedAt:     in.GeneratedAt,
		milestones:      make(map[string]Milestone, len(in.Milestones)),
		workItems:       make(map[string]WorkItem, len(in.WorkItems)),
		dependencies:    make(map[string]Dependency, len(in.Dependencies)),
		risks:           make(map[string]Risk, len(in.Risks)),
		decisions:       make(map[string]Decision, len(in.Decisions)),
		issues:          make(map[string]Issue, len(in.Issues)),
		teamHistory:     make(map[string]ExternalTeamHistory, len(in.TeamHistory)),
		actors:          make(map[string]Actor, len(in.Actors)),
		depsByFrom:      make(map[string][]string),
		depsByTo:        make(map[string][]string),
		risksByWorkItem: make(map[string][]string),
	}

	for _, a := range in.Actors {
		if a.ID == "" {
			return nil, InvalidInputf(op, "actor with empty id")
		}
		if _, dup := s.actors[a.ID]; dup {
			return nil, InvalidInputf(op, "duplicate actor id %q", a.ID)
		}
		s.actors[a.ID] = a
	}

	for _, m := range in.Milestones {
		if m.ID == "" {
			return nil, InvalidInputf(op, "milestone with empty id")
		}
		if _, dup := s.milestones[m.ID]; dup {
			return nil, InvalidInputf(op, "duplicate milestone id %q", m.ID)
		}
		if m.OwnerID != "" {
			if _, ok := s.actors[m.OwnerID]; !ok {
				return nil, InvalidInputf(op, "milestone %q references unknown owner %q", m.ID, m.OwnerID)
			}
		}
		s.milestones[m.ID] = m
	}

	for _, w := range in.WorkItems {
		if w.ID == "" {
			return nil, InvalidInputf(op, "work item with empty id")
		}
		if _, dup := s.workItems[w.ID]; dup {
			return nil, InvalidInputf(op, "duplicate work item id %q", w.ID)
		}
		if w.MilestoneID != "" {
			if _, ok := s.milestones[w.MilestoneID]; !ok {
				return nil, InvalidInputf(op, "work item %q references unknown milestone %q", w.ID, w.MilestoneID)
			}
		}
		if w.OwnerID != "" {
			if _, ok := s.actors[w.OwnerID]; !ok {
				return nil, InvalidInputf(op, "work item %q references unknown owner %q", w.ID, w.OwnerID)
			}
		}
		s.workItems[w.ID] = w
	}

	for _, d := range in.Dependencies {
		if d.ID == "" {
			return nil, InvalidInputf(op, "dependency with empty id")
		}
		if _, dup := s.dependencies[d.ID]; dup {
			return nil, InvalidInputf(op, "duplicate dependency id %q", d.ID)
		}
		if _, ok := s.workItems[d.FromID]; !ok {
			return nil, InvalidGraphf(op, "dependency %q references unknown work item %q (from)", d.ID, d.FromID)
		}
		if _, ok := s.workItems[d.ToID]; !ok {
			return nil, InvalidGraphf(op, "dependency %q references unknown work item %q (to)", d.ID, d.ToID)
		}
		s.dependencies[d.ID] = d
		s.depsByFrom[d.FromID] = append(s.depsByFrom[d.FromID], d.ID)
		s.depsByTo[d.ToID] = append(s.depsByTo[d.ToID], d.ID)
	}

	for _, r := range in.Risks {
		if r.ID == "" {
			return nil, InvalidInputf(op, "risk with empty id")
		}
		if _, dup := s.risks[r.ID]; dup {
			return nil, InvalidInputf(op, "duplicate risk id %q", r.ID)
		}
		s.risks[r.ID] = r
		if r.Impact.BlockedItem != "" {
			s.risksByWorkItem[r.Impact.BlockedItem] = append(s.risksByWorkItem[r.Impact.BlockedItem], r.ID)
		}
		for _, wi := range r.AffectedIDs {
			s.risksByWorkItem[wi] = append(s.risksByWorkItem[wi], r.ID)
		}
	}

	for _, d := range in.Decisions {
		if d.ID == "" {
			return nil, InvalidInputf(op, "decision with empty id")
		}
		if _, dup := s.decisions[d.ID]; dup {
			return nil, InvalidInputf(op, "duplicate decision id %q", d.ID)
		}
		s.decisions[d.ID] = d
	}

	for _, i := range in.Issues {
		if i.ID == "" {
			return nil, InvalidInputf(op, "issue with empty id")
		}
		if _, dup := s.issues[i.ID]; dup {
			return nil, InvalidInputf(op, "duplicate issue id %q", i.ID)
		}
		s.issues[i.ID] = i
	}

	for _, h := range in.TeamHistory {
		if h.TeamID == "" {
			return nil, InvalidInputf(op, "team history with empty team id")
		}
		s.teamHistory[h.TeamID] = h
	}

	for id := range s.risksByWorkItem {
		sort.Strings(s.risksByWorkItem[id])
	}
	for id := range s.depsByFrom {
		sort.Strings(s.depsByFrom[id])
	}

	return s, nil
}

func (s *State) Milestone(id string) (Milestone, bool)           { m, ok := s.milestones[id]; return m, ok }
func (s *State) WorkItem(id string) (WorkItem, bool)              { w, ok := s.workItems[id]; return w, ok }
func (s *State) Dependency(id string) (Dependency, bool)          { d, ok := s.dependencies[id]; return d, ok }
func (s *State) Risk(id string) (Risk, bool)                      { r, ok := s.risks[id]; return r, ok }
func (s *State) Decision(id string) (Decision, bool)              { d, ok := s.decisions[id]; return d, ok }
func (s *State) Issue(id string) (Issue, bool)                    { i, ok := s.issues[id]; return i, ok }
func (s *State) TeamHistory(teamID string) (ExternalTeamHistory, bool) {
	h, ok := s.teamHistory[teamID]
	return h, ok
}
func (s *State) Actor(id string) (Actor, bool) { a, ok := s.actors[id]; return a, ok }

// MilestoneWorkItems returns the work items belonging to a milestone, in the
// order the milestone lists them.
func (s *State) MilestoneWorkItems(milestoneID string) []WorkItem {
	m, ok := s.milestones[milestoneID]
	if !ok {
		return nil
	}
	out := make([]WorkItem, 0, len(m.WorkItemIDs))
	for _, id := range m.WorkItemIDs {
		if w, ok := s.workItems[id]; ok {
			out = append(out, w)
		}
	}
	return out
}

// DependenciesFrom returns the dependency edges where workItemID is the
// blocked ("from") side, sorted by id for determinism.
func (s *State) DependenciesFrom(workItemID string) []Dependency {
	ids := s.depsByFrom[workItemID]
	out := make([]Dependency, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.dependencies[id])
	}
	return out
}

// DependenciesTo returns the dependency edges where workItemID is the
// blocking ("to") side.
func (s *State) DependenciesTo(workItemID string) []Dependency {
	ids := s.depsByTo[workItemID]
	out := make([]Dependency, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.dependencies[id])
	}
	return out
}

// RisksForWorkItem returns, in sorted-id order, every risk whose
// Impact.BlockedItem is workItemID or whose AffectedIDs contains it.
func (s *State) RisksForWorkItem(workItemID string) []Risk {
	ids := s.risksByWorkItem[workItemID]
	out := make([]Risk, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.risks[id])
	}
	return out
}

// AllWorkItems returns every work item, sorted by id, for deterministic
// iteration in the delay model and graph builder.
func (s *State) AllWorkItems() []WorkItem {
	ids := make([]string, 0, len(s.workItems))
	for id := range s.workItems {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]WorkItem, len(ids))
	for i, id := range ids {
		out[i] = s.workItems[id]
	}
	return out
}

// AllDependencies returns every dependency edge, sorted by id.
func (s *State) AllDependencies() []Dependency {
	ids := make([]string, 0, len(s.dependencies))
	for id := range s.dependencies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Dependency, len(ids))
	for i, id := range ids {
		out[i] = s.dependencies[id]
	}
	return out
}

// AllDecisions returns every decision, sorted by id.
func (s *State) AllDecisions() []Decision {
	ids := make([]string, 0, len(s.decisions))
	for id := range s.decisions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Decision, len(ids))
	for i, id := range ids {
		out[i] = s.decisions[id]
	}
	return out
}

// AllRisks returns every risk, sorted by id.
func (s *State) AllRisks() []Risk {
	ids := make([]string, 0, len(s.risks))
	for id := range s.risks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Risk, len(ids))
	for i, id := range ids {
		out[i] = s.risks[id]
	}
	return out
}

// AllActors returns every actor, sorted by id.
func (s *State) AllActors() []Actor {
	ids := make([]string, 0, len(s.actors))
	for id := range s.actors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]Actor, len(ids))
	for i, id := range ids {
		out[i] = s.actors[id]
	}
	return out
}

// WithRisk returns a new State identical to s but with risk replaced (or
// inserted, if new). s itself is left unchanged.
func (s *State) WithRisk(r Risk) *State {
	cp := s.shallowCopy()
	cp.risks[r.ID] = r
	if r.Impact.BlockedItem != "" {
		cp.risksByWorkItem[r.Impact.BlockedItem] = appendUnique(cp.risksByWorkItem[r.Impact.BlockedItem], r.ID)
	}
	for _, wi := range r.AffectedIDs {
		cp.risksByWorkItem[wi] = appendUnique(cp.risksByWorkItem[wi], r.ID)
	}
	return cp
}

// WithIssue returns a new State identical to s but with issue replaced or
// inserted.
func (s *State) WithIssue(i Issue) *State {
	cp := s.shallowCopy()
	cp.issues[i.ID] = i
	return cp
}

func (s *State) shallowCopy() *State {
	cp := &State{
		GeneratedAt:     s.GeneratedAt,
		milestones:      s.milestones,
		workItems:       s.workItems,
		dependencies:    s.dependencies,
		decisions:       s.decisions,
		teamHistory:     s.teamHistory,
		actors:          s.actors,
		depsByFrom:      s.depsByFrom,
		depsByTo:        s.depsByTo,
		risks:           copyRiskMap(s.risks),
		issues:          copyIssueMap(s.issues),
		risksByWorkItem: copyStringSliceMap(s.risksByWorkItem),
	}
	return cp
}

func copyRiskMap(m map[string]Risk) map[string]Risk {
	out := make(map[string]Risk, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyIssueMap(m map[string]Issue) map[string]Issue {
	out := make(map[string]Issue, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyStringSliceMap(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

func appendUnique(s []string, v string) []string {
	for _, existing := range s {
		if existing == v {
			return s
		}
	}
	s = append(s, v)
	sort.Strings(s)
	return s
}
