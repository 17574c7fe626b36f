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
	"github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"
	"github.com/ray-project/autoscaler-scheduler/pkg/scheduling"
)

// scheduleGangs is stage 5 (§4.5). Every request in a gang is placed
// atomically through the PENDING_DEMAND view: if any member cannot be
// placed, the whole gang rolls back and is reported infeasible. Gangs are
// processed in request-list order, which is this stage's deterministic
// iteration order.
func (s *scheduler) scheduleGangs() []v1alpha1.GangResourceRequest {
	var infeasible []v1alpha1.GangResourceRequest
	for _, gang := range s.req.GangResourceRequests {
		if !s.tryGang(gang) {
			infeasible = append(infeasible, gang)
		}
	}
	return infeasible
}

// affinityGroup is the (kind, key, value) key placement constraints
// bucket requests by within one gang.
type affinityGroup struct {
	kind  v1alpha1.PlacementConstraintKind
	key   string
	value string
}

func (s *scheduler) tryGang(gang v1alpha1.GangResourceRequest) bool {
	txn := s.begin()

	affinityNode := map[affinityGroup]*scheduling.Node{}
	antiAffinityUsed := map[affinityGroup]map[*scheduling.Node]bool{}

	for _, req := range gang.Requests {
		n, ok := s.placeGangMember(req, affinityNode, antiAffinityUsed)
		if !ok {
			txn.rollback()
			return false
		}
		for _, c := range req.PlacementConstraints {
			g := affinityGroup{kind: c.Kind, key: c.LabelKey, value: c.LabelValue}
			switch c.Kind {
			case v1alpha1.PlacementAffinity:
				affinityNode[g] = n
			case v1alpha1.PlacementAntiAffinity:
				if antiAffinityUsed[g] == nil {
					antiAffinityUsed[g] = map[*scheduling.Node]bool{}
				}
				antiAffinityUsed[g][n] = true
			}
		}
	}

	txn.commit()
	return true
}

// placeGangMember finds or mints a node for req, honoring the affinity and
// anti-affinity groups accumulated so far in this gang.
func (s *scheduler) placeGangMember(req v1alpha1.ResourceRequest, affinityNode map[affinityGroup]*scheduling.Node, antiAffinityUsed map[affinityGroup]map[*scheduling.Node]bool) (*scheduling.Node, bool) {
	forced, forcedGroup := forcedAffinityNode(req, affinityNode)
	if forcedGroup {
		if forced == nil || !forced.Fits(v1alpha1.SourcePendingDemand, req.ResourcesBundle) {
			return nil, false
		}
		forced.Place(v1alpha1.SourcePendingDemand, req.ResourcesBundle)
		return forced, true
	}

	excluded := excludedByAntiAffinity(req, antiAffinityUsed)
	for _, n := range s.nodes {
		if n.Status == v1alpha1.SchedulingNodeToTerminate || n.NodeKind == v1alpha1.NodeKindHead {
			continue
		}
		if excluded[n] {
			continue
		}
		if n.Fits(v1alpha1.SourcePendingDemand, req.ResourcesBundle) {
			n.Place(v1alpha1.SourcePendingDemand, req.ResourcesBundle)
			return n, true
		}
	}

	n, ok := s.mintBest(req.ResourcesBundle, s.req.ConserveGPUNodes)
	if !ok {
		return nil, false
	}
	if excluded[n] {
		return nil, false
	}
	n.Place(v1alpha1.SourcePendingDemand, req.ResourcesBundle)
	return n, true
}

// forcedAffinityNode reports the single node every AFFINITY constraint on
// req agrees on, if any such constraint has already been seen in this
// gang. The second return is true whenever req carries at least one
// AFFINITY constraint whose group has already picked a node; a mismatch
// between two such constraints (different groups disagreeing on a node)
// makes placement fail rather than silently picking one.
func forcedAffinityNode(req v1alpha1.ResourceRequest, affinityNode map[affinityGroup]*scheduling.Node) (*scheduling.Node, bool) {
	var forced *scheduling.Node
	found := false
	for _, c := range req.PlacementConstraints {
		if c.Kind != v1alpha1.PlacementAffinity {
			continue
		}
		g := affinityGroup{kind: c.Kind, key: c.LabelKey, value: c.LabelValue}
		n, ok := affinityNode[g]
		if !ok {
			continue
		}
		found = true
		if forced == nil {
			forced = n
		} else if forced != n {
			// Two AFFINITY groups on the same request disagree on where to
			// land; unsatisfiable.
			return nil, true
		}
	}
	return forced, found
}

func excludedByAntiAffinity(req v1alpha1.ResourceRequest, antiAffinityUsed map[affinityGroup]map[*scheduling.Node]bool) map[*scheduling.Node]bool {
	excluded := map[*scheduling.Node]bool{}
	for _, c := range req.PlacementConstraints {
		if c.Kind != v1alpha1.PlacementAntiAffinity {
			continue
		}
		g := affinityGroup{kind: c.Kind, key: c.LabelKey, value: c.LabelValue}
		for n := range antiAffinityUsed[g] {
			excluded[n] = true
		}
	}
	return excluded
}
