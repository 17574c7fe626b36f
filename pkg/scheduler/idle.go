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

	"github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"
	"github.com/ray-project/autoscaler-scheduler/pkg/scheduling"
)

// terminateIdle is stage 7 (§4.7). It is skipped entirely whenever any
// ClusterResourceConstraint in the request is active: a cluster-wide floor
// means idle capacity might still be reserve capacity the constraint
// needs, so idle termination and constraint floors never fight each
// other. It is also a no-op when idle_timeout_s is unset. Head nodes are
// never idle-terminated, and a type is never trimmed below its own
// min_worker_nodes by this stage.
func (s *scheduler) terminateIdle() {
	if s.req.IdleTimeoutS == nil {
		return
	}
	for _, c := range s.req.ClusterResourceConstraints {
		if c.Active() {
			return
		}
	}

	thresholdMs := int64(*s.req.IdleTimeoutS * 1000)
	for _, typeName := range s.sortedTypeNames() {
		cfg := s.req.NodeTypeConfigs[typeName]
		candidates := s.idleCandidates(typeName, thresholdMs)
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].IMInstanceID < candidates[j].IMInstanceID })

		floor := cfg.MinWorkerNodes
		current := s.typeCount(typeName)
		for _, n := range candidates {
			if current <= floor {
				break
			}
			markTerminate(n, v1alpha1.TerminationCauseIdle)
			current--
		}
	}
}

func (s *scheduler) idleCandidates(typeName string, thresholdMs int64) []*scheduling.Node {
	var out []*scheduling.Node
	for _, n := range s.nodes {
		if n.NodeType != typeName || n.NodeKind == v1alpha1.NodeKindHead {
			continue
		}
		if n.Status != v1alpha1.SchedulingNodeSchedulable {
			continue
		}
		if n.IdleDurationMs >= thresholdMs {
			out = append(out, n)
		}
	}
	return out
}
