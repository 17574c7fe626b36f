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

// SchedulingRequest is the scheduler's sole input. It is a snapshot: the
// caller is responsible for serializing calls so at most one Schedule is
// in flight against a given snapshot (§5).
type SchedulingRequest struct {
	NodeTypeConfigs             map[string]NodeTypeConfig
	ResourceRequests            []ResourceRequestWithCount
	GangResourceRequests        []GangResourceRequest
	ClusterResourceConstraints  []ClusterResourceConstraint
	CurrentInstances            []AutoscalerInstance

	// MaxNumNodes is the global cap on non-head workers plus the head. Nil
	// means unbounded.
	MaxNumNodes *int
	// IdleTimeoutS is the idle duration, in seconds, beyond which an idle
	// node becomes a termination candidate. Nil disables idle termination.
	IdleTimeoutS *float64

	DisableLaunchConfigCheck bool

	// ConserveGPUNodes toggles scoring component C (§4.6): penalize node
	// types that carry GPU resources a request doesn't ask for.
	ConserveGPUNodes bool
}
