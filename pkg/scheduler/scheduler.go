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

// Package scheduler composes pkg/scheduling's Node and scoring primitives
// into the eight-stage pipeline described by the Resource Demand
// Scheduler: ingest, min-worker, max-worker, constraint scheduling, gang
// scheduling, demand scheduling, idle termination, and reply assembly.
// Schedule is a pure decision function: it mutates only the local working
// set of scheduling.Nodes built from its own snapshot input, never an
// external system.
package scheduler

import (
	"context"
	"sort"

	"go.uber.org/multierr"

	"github.com/ray-project/autoscaler-scheduler/internal/log"
	"github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"
	"github.com/ray-project/autoscaler-scheduler/pkg/scheduling"
)

// scheduler holds the mutable working state of one Schedule call.
type scheduler struct {
	ctx        context.Context
	req        v1alpha1.SchedulingRequest
	nodes      []*scheduling.Node
	placements []v1alpha1.Placement
}

// Schedule is the scheduler's single entry point (§2). Given one
// SchedulingRequest snapshot it runs the eight stages in strict sequence
// and returns the resulting SchedulingReply, or a fatal error for a config
// or invariant violation (§7). It holds no locks and retains no state
// across calls.
func Schedule(ctx context.Context, req v1alpha1.SchedulingRequest) (*v1alpha1.SchedulingReply, error) {
	if err := req.Validate(); err != nil {
		return nil, newConfigError("invalid scheduling request: %s", err)
	}

	s := &scheduler{ctx: ctx, req: req}

	if err := s.ingest(); err != nil {
		return nil, err
	}

	s.enforceMinWorkers()
	s.enforceMaxWorkers()

	infeasibleConstraints := s.scheduleConstraints()
	infeasibleGangs := s.scheduleGangs()
	infeasibleRequests := s.scheduleDemand()

	s.terminateIdle()

	if err := s.checkInvariants(); err != nil {
		return nil, err
	}

	reply := s.assembleReply(infeasibleRequests, infeasibleGangs, infeasibleConstraints, s.placements)
	log.FromContext(ctx).Infow("schedule complete",
		"launches", len(reply.ToLaunch), "terminations", len(reply.ToTerminate),
		"infeasibleRequests", len(reply.InfeasibleResourceRequests),
		"infeasibleGangs", len(reply.InfeasibleGangResourceRequests),
		"infeasibleConstraints", len(reply.InfeasibleClusterResourceConstraints))
	return reply, nil
}

func (s *scheduler) checkInvariants() error {
	var errs error
	for _, n := range s.nodes {
		if err := n.Invariant(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return newInvariantError("invariant violation(s): %s", errs)
	}
	return nil
}

// sortedTypeNames returns the node type catalog's keys in sorted order, so
// iteration order over node types is deterministic (§5).
func (s *scheduler) sortedTypeNames() []string {
	names := make([]string, 0, len(s.req.NodeTypeConfigs))
	for name := range s.req.NodeTypeConfigs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// typeCount counts nodes of nodeType that are not already doomed to be
// terminated. Nodes already marked TO_TERMINATE are not "current" capacity
// for the purposes of min/max bound accounting.
func (s *scheduler) typeCount(nodeType string) int {
	count := 0
	for _, n := range s.nodes {
		if n.NodeType == nodeType && n.Status != v1alpha1.SchedulingNodeToTerminate {
			count++
		}
	}
	return count
}

// nonTerminatingTotal counts every node (including heads) not already
// marked TO_TERMINATE. This is the population the global max_num_nodes
// cap is measured against (§9 open question: heads count toward the cap).
func (s *scheduler) nonTerminatingTotal() int {
	count := 0
	for _, n := range s.nodes {
		if n.Status != v1alpha1.SchedulingNodeToTerminate {
			count++
		}
	}
	return count
}

// canMint reports whether one more node of nodeType can be minted without
// breaching its per-type max or the global max_num_nodes cap.
func (s *scheduler) canMint(nodeType string) bool {
	cfg, ok := s.req.NodeTypeConfigs[nodeType]
	if !ok {
		return false
	}
	if s.typeCount(nodeType) >= cfg.MaxWorkerNodes {
		return false
	}
	if s.req.MaxNumNodes != nil && s.nonTerminatingTotal() >= *s.req.MaxNumNodes {
		return false
	}
	return true
}

// mint appends one fresh pending SCHEDULABLE node of nodeType to the
// working set, after checking canMint. Returns (nil, false) if the bounds
// forbid it.
func (s *scheduler) mint(nodeType string) (*scheduling.Node, bool) {
	if !s.canMint(nodeType) {
		return nil, false
	}
	cfg := s.req.NodeTypeConfigs[nodeType]
	n := scheduling.NewPending(nodeType, cfg)
	s.nodes = append(s.nodes, n)
	return n, true
}

// mintBest scores every candidate type in the catalog against demand and
// mints the best-scoring one that still has headroom under the bounds
// (§4.6). It tries candidates in score order until one actually mints,
// since the top-scoring type might be at its per-type cap.
func (s *scheduler) mintBest(demand v1alpha1.ResourceBundle, conserveGPUNodes bool) (*scheduling.Node, bool) {
	candidates := make([]v1alpha1.NodeTypeConfig, 0, len(s.req.NodeTypeConfigs))
	for _, name := range s.sortedTypeNames() {
		candidates = append(candidates, s.req.NodeTypeConfigs[name])
	}
	ranked := scheduling.RankNodeTypes(candidates, demand, conserveGPUNodes)
	for _, score := range ranked {
		if n, ok := s.mint(score.TypeName); ok {
			return n, true
		}
	}
	return nil, false
}

// recordPlacement appends a diagnostic binpacking-report entry (supplements
// the original implementation's report of which node absorbed which
// demand, see SPEC_FULL.md). Purely additive: nothing in the scheduler
// reads placements back, so it never affects the reply's required fields.
func (s *scheduler) recordPlacement(n *scheduling.Node, demandIndex int) {
	s.placements = append(s.placements, v1alpha1.Placement{
		NodeType:    n.NodeType,
		NodeID:      n.IMInstanceID,
		DemandIndex: demandIndex,
	})
}

// transaction is the snapshot/restore overlay §9 calls for: "allocate on a
// copy, commit or discard." It covers both the per-node accounting views
// and any nodes minted mid-transaction, so a rollback undoes a partially
// placed gang or constraint bundle completely.
type transaction struct {
	s               *scheduler
	nodeCountBefore int
	snapshots       []map[v1alpha1.ResourceRequestSource]v1alpha1.ResourceBundle
}

func (s *scheduler) begin() *transaction {
	snaps := make([]map[v1alpha1.ResourceRequestSource]v1alpha1.ResourceBundle, len(s.nodes))
	for i, n := range s.nodes {
		snaps[i] = n.Snapshot()
	}
	return &transaction{s: s, nodeCountBefore: len(s.nodes), snapshots: snaps}
}

func (t *transaction) rollback() {
	t.s.nodes = t.s.nodes[:t.nodeCountBefore]
	for i, snap := range t.snapshots {
		t.s.nodes[i].Restore(snap)
	}
}

// commit is a no-op: mutations already happened in place. It documents
// the transaction's successful end at call sites.
func (t *transaction) commit() {}
