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

package v1alpha1

// LaunchRequest is one entry of the reply's launch plan: "start this many
// nodes of this type."
type LaunchRequest struct {
	InstanceType string
	Count        int
}

// TerminationRequest is one entry of the reply's termination plan.
type TerminationRequest struct {
	InstanceID string
	RayNodeID  string
	Cause      TerminationCause
}

// Placement is additive, purely-informational diagnostic output: which
// existing or about-to-be-launched node absorbed which demand. Nothing in
// the scheduler reads Placements back in, so it can never affect the
// determinism of the required reply fields (supplements the original
// implementation's binpacking report, see SPEC_FULL.md).
type Placement struct {
	NodeType    string
	NodeID      string
	DemandIndex int
}

// SchedulingReply is the scheduler's sole output.
type SchedulingReply struct {
	ToLaunch    []LaunchRequest
	ToTerminate []TerminationRequest

	InfeasibleResourceRequests           []ResourceRequest
	InfeasibleGangResourceRequests       []GangResourceRequest
	InfeasibleClusterResourceConstraints []ClusterResourceConstraint

	Placements []Placement
}
