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
)

// assembleReply is stage 8 (§4.8). It projects the working node set into
// the launch and termination plans the caller acts on, plus whatever the
// earlier stages already collected as infeasible. Both plans are sorted
// for a deterministic, comparable reply: launches by node type name,
// terminations by instance id.
func (s *scheduler) assembleReply(
	infeasibleRequests []v1alpha1.ResourceRequest,
	infeasibleGangs []v1alpha1.GangResourceRequest,
	infeasibleConstraints []v1alpha1.ClusterResourceConstraint,
	placements []v1alpha1.Placement,
) *v1alpha1.SchedulingReply {
	launchCounts := map[string]int{}
	var terminations []v1alpha1.TerminationRequest

	for _, n := range s.nodes {
		switch n.Status {
		case v1alpha1.SchedulingNodeSchedulable:
			if n.Pending {
				launchCounts[n.NodeType]++
			}
		case v1alpha1.SchedulingNodeToTerminate:
			terminations = append(terminations, v1alpha1.TerminationRequest{
				InstanceID: n.IMInstanceID,
				RayNodeID:  n.RayNodeID,
				Cause:      n.TerminationCause,
			})
		}
	}

	typeNames := make([]string, 0, len(launchCounts))
	for t := range launchCounts {
		typeNames = append(typeNames, t)
	}
	sort.Strings(typeNames)
	launches := make([]v1alpha1.LaunchRequest, 0, len(typeNames))
	for _, t := range typeNames {
		launches = append(launches, v1alpha1.LaunchRequest{InstanceType: t, Count: launchCounts[t]})
	}

	sort.Slice(terminations, func(i, j int) bool { return terminations[i].InstanceID < terminations[j].InstanceID })

	return &v1alpha1.SchedulingReply{
		ToLaunch:                             launches,
		ToTerminate:                          terminations,
		InfeasibleResourceRequests:           infeasibleRequests,
		InfeasibleGangResourceRequests:       infeasibleGangs,
		InfeasibleClusterResourceConstraints: infeasibleConstraints,
		Placements:                           placements,
	}
}
