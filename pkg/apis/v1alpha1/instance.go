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

// IMInstance is the Instance Manager's lifecycle record for one cloud
// instance. The Instance Manager itself is out of scope (§1); only this
// view of its state crosses into the scheduler.
type IMInstance struct {
	InstanceID       string
	InstanceType     string
	Status           InstanceStatus
	LaunchConfigHash string
	NodeKind         NodeKind
}

// RayNode is the GCS/cluster-state feed's runtime view of a live Ray node.
// It is optional: an instance may have an IMInstance record with no
// corresponding RayNode yet (still booting).
type RayNode struct {
	NodeID               string
	TotalResources       ResourceBundle
	AvailableResources    ResourceBundle
	IdleDurationMs       int64
	Status               RayNodeStatus
	DynamicLabels        map[string]string
}

// AutoscalerInstance is the scheduler's combined view of one instance: the
// Instance Manager's lifecycle record plus, when available, the GCS feed's
// runtime state.
type AutoscalerInstance struct {
	IMInstance *IMInstance
	RayNode    *RayNode
}
