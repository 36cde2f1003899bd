package ecs

import (
	"github.com/goccy/go-json"
)

// Schedule is the ordered list of batches produced by Scheduler.Build.
// Systems sharing a batch have non-conflicting access sets and may run concurrently;
// batches run strictly one after another.
type Schedule struct {
	systems []*registeredSystem
	batches []batch
}

type batch struct {
	stage   Stage
	members []int
}

// buildSchedule colours the conflict graph greedily: stage by stage, each system in
// registration order joins the first batch of its stage that has no conflicting member,
// or opens a new one. The result depends only on the systems and their order.
func buildSchedule(systems []*registeredSystem) *Schedule {
	schedule := &Schedule{systems: systems}

	for stage := range stageCount {
		first := len(schedule.batches)

		for idx, sys := range systems {
			if sys.config.stage != stage {
				continue
			}

			placed := false
			for b := first; b < len(schedule.batches); b++ {
				if !schedule.conflictsWithBatch(sys, schedule.batches[b]) {
					schedule.batches[b].members = append(schedule.batches[b].members, idx)
					placed = true
					break
				}
			}

			if !placed {
				schedule.batches = append(schedule.batches, batch{stage: stage, members: []int{idx}})
			}
		}
	}

	return schedule
}

func (s *Schedule) conflictsWithBatch(sys *registeredSystem, b batch) bool {
	for _, member := range b.members {
		if sys.query.access.conflicts(&s.systems[member].query.access) {
			return true
		}
	}
	return false
}

// Len returns the number of batches.
func (s *Schedule) Len() int {
	return len(s.batches)
}

// Batches returns the system names of each batch, in execution order.
func (s *Schedule) Batches() [][]string {
	names := make([][]string, len(s.batches))
	for i, b := range s.batches {
		names[i] = make([]string, len(b.members))
		for j, member := range b.members {
			names[i][j] = s.systems[member].name
		}
	}
	return names
}

// BatchOf returns the index of the batch containing the named system, or -1.
func (s *Schedule) BatchOf(name string) int {
	for i, b := range s.batches {
		for _, member := range b.members {
			if s.systems[member].name == name {
				return i
			}
		}
	}
	return -1
}

// ScheduleView is a read-only snapshot of a schedule's structure for diagnostics.
type ScheduleView struct {
	Batches []BatchView `json:"batches"`
}

// BatchView describes one batch.
type BatchView struct {
	Index   int          `json:"index"`
	Stage   string       `json:"stage"`
	Systems []SystemView `json:"systems"`
}

// SystemView describes one scheduled system and its declared accesses.
type SystemView struct {
	Name   string   `json:"name"`
	Access []string `json:"access"`
}

// View returns a snapshot of the schedule.
func (s *Schedule) View() ScheduleView {
	view := ScheduleView{Batches: make([]BatchView, len(s.batches))}

	for i, b := range s.batches {
		bv := BatchView{
			Index:   i,
			Stage:   b.stage.String(),
			Systems: make([]SystemView, len(b.members)),
		}
		for j, member := range b.members {
			sys := s.systems[member]
			accesses := sys.descriptor.Accesses()
			sv := SystemView{Name: sys.name, Access: make([]string, len(accesses))}
			for k, a := range accesses {
				sv.Access[k] = a.String()
			}
			bv.Systems[j] = sv
		}
		view.Batches[i] = bv
	}

	return view
}

// JSON encodes the view with indentation.
func (v ScheduleView) JSON() ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
