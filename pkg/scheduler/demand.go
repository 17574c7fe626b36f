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

// scheduleDemand is stage 6 (§4.6). Each individual ResourceRequest is
// placed one unit at a time against the PENDING_DEMAND view: prefer the
// existing node that ends up most utilized after placement (tight
// bin-packing), and fall back to minting the best-scoring node type
// (§4.6's scoring tuple) when nothing existing fits. A unit that can be
// neither placed nor minted is reported infeasible individually, not as
// a whole group, since the group's count is just a repetition count.
func (s *scheduler) scheduleDemand() []v1alpha1.ResourceRequest {
	var infeasible []v1alpha1.ResourceRequest
	demandIndex := 0
	for _, group := range s.req.ResourceRequests {
		for i := 0; i < group.Count; i++ {
			if !s.placeDemand(group.Request, demandIndex) {
				infeasible = append(infeasible, group.Request)
			}
			demandIndex++
		}
	}
	return infeasible
}

func (s *scheduler) placeDemand(req v1alpha1.ResourceRequest, demandIndex int) bool {
	if n := s.bestFitExisting(req); n != nil {
		n.Place(v1alpha1.SourcePendingDemand, req.ResourcesBundle)
		s.recordPlacement(n, demandIndex)
		return true
	}
	n, ok := s.mintBest(req.ResourcesBundle, s.req.ConserveGPUNodes)
	if !ok {
		return false
	}
	n.Place(v1alpha1.SourcePendingDemand, req.ResourcesBundle)
	s.recordPlacement(n, demandIndex)
	return true
}

// bestFitExisting returns the schedulable worker node that both fits req
// and, after hypothetically placing it, would end up with the highest
// utilization — the tightest fit among the feasible candidates. nil if
// none fits.
func (s *scheduler) bestFitExisting(req v1alpha1.ResourceRequest) *scheduling.Node {
	var best *scheduling.Node
	var bestScore float64
	for _, n := range s.nodes {
		if n.Status == v1alpha1.SchedulingNodeToTerminate || n.NodeKind == v1alpha1.NodeKindHead {
			continue
		}
		if !n.MatchesConstraints(req.PlacementConstraints) {
			continue
		}
		if !n.Fits(v1alpha1.SourcePendingDemand, req.ResourcesBundle) {
			continue
		}
		n.Place(v1alpha1.SourcePendingDemand, req.ResourcesBundle)
		score := n.UtilizationScore(v1alpha1.SourcePendingDemand)
		n.Release(v1alpha1.SourcePendingDemand, req.ResourcesBundle)
		if best == nil || score > bestScore {
			best = n
			bestScore = score
		}
	}
	return best
}
