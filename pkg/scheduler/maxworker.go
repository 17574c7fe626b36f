/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package scheduler

import (
	"sort"

	"github.com/ray-project/autoscaler-scheduler/internal/log"
	"github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"
	"github.com/ray-project/autoscaler-scheduler/pkg/scheduling"
)

// enforceMaxWorkers is stage 3 (§4.3). It first trims any node type whose
// non-terminating count exceeds its own max_worker_nodes, then trims the
// whole fleet against the global max_num_nodes if set. Head nodes are
// never victims of either pass.
//
// Victim order within a pool is layered: non-running instances first,
// then lowest PENDING_DEMAND utilization, then instance id
// lexicographically, which is the same tiebreak chain §4.3 specifies.
func (s *scheduler) enforceMaxWorkers() {
	for _, typeName := range s.sortedTypeNames() {
		cfg := s.req.NodeTypeConfigs[typeName]
		pool := s.victimPool(func(n *scheduling.Node) bool { return n.NodeType == typeName })
		excess := len(pool) - cfg.MaxWorkerNodes
		if excess <= 0 {
			continue
		}
		sortVictims(pool)
		for i := 0; i < excess; i++ {
			markTerminate(pool[i], v1alpha1.TerminationCauseMaxNumNodePerType)
		}
	}

	if s.req.MaxNumNodes == nil {
		return
	}
	excess := s.nonTerminatingTotal() - *s.req.MaxNumNodes
	if excess <= 0 {
		return
	}
	pool := s.victimPool(func(*scheduling.Node) bool { return true })
	sortVictims(pool)
	n := excess
	if n > len(pool) {
		log.FromContext(s.ctx).Warnw("max_num_nodes exceeded by head nodes alone; cannot terminate further",
			"excess", excess, "availableVictims", len(pool))
		n = len(pool)
	}
	for i := 0; i < n; i++ {
		markTerminate(pool[i], v1alpha1.TerminationCauseMaxNumNodes)
	}
}

// victimPool returns the SCHEDULABLE, non-head, not-already-doomed nodes
// matching filter, in the order they appear in the working set. Nodes
// already marked TO_TERMINATE are excluded: they are already being
// removed and must not be double-counted or double-marked.
func (s *scheduler) victimPool(filter func(*scheduling.Node) bool) []*scheduling.Node {
	pool := make([]*scheduling.Node, 0)
	for _, n := range s.nodes {
		if n.NodeKind == v1alpha1.NodeKindHead {
			continue
		}
		if n.Status == v1alpha1.SchedulingNodeToTerminate {
			continue
		}
		if filter(n) {
			pool = append(pool, n)
		}
	}
	return pool
}

func sortVictims(pool []*scheduling.Node) {
	sort.SliceStable(pool, func(i, j int) bool { return lessVictim(pool[i], pool[j]) })
}

// lessVictim orders a before b when a is the cheaper node to terminate:
// not-yet-running before running, then lower utilization, then instance
// id lexicographically. Utilization is read from the PENDING_DEMAND view,
// the same one demand bin-packing scores against (demand.go's
// bestFitExisting) — CLUSTER_RESOURCE_CONSTRAINT is still freshly seeded
// to full capacity at this stage (constraint scheduling runs later) and
// would score every node identically.
func lessVictim(a, b *scheduling.Node) bool {
	aRunning, bRunning := a.IsRunning(), b.IsRunning()
	if aRunning != bRunning {
		return !aRunning
	}
	au, bu := a.UtilizationScore(v1alpha1.SourcePendingDemand), b.UtilizationScore(v1alpha1.SourcePendingDemand)
	if au != bu {
		return au < bu
	}
	return a.IMInstanceID < b.IMInstanceID
}

func markTerminate(n *scheduling.Node, cause v1alpha1.TerminationCause) {
	n.Status = v1alpha1.SchedulingNodeToTerminate
	n.TerminationCause = cause
}
