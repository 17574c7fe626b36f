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

import "github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"

// scheduleConstraints is stage 4 (§4.4). Each ClusterResourceConstraint is
// a multiset of bundles the cluster must be able to hold simultaneously,
// accounted through the CLUSTER_RESOURCE_CONSTRAINT view and never
// consumed by actual demand placement. A constraint is satisfied only if
// every one of its bundles fits; any shortfall rolls the whole constraint
// back and reports it infeasible, since a cluster-wide floor is binary.
func (s *scheduler) scheduleConstraints() []v1alpha1.ClusterResourceConstraint {
	var infeasible []v1alpha1.ClusterResourceConstraint
	for _, constraint := range s.req.ClusterResourceConstraints {
		if !constraint.Active() {
			continue
		}
		if !s.tryConstraint(constraint) {
			infeasible = append(infeasible, constraint)
		}
	}
	return infeasible
}

func (s *scheduler) tryConstraint(constraint v1alpha1.ClusterResourceConstraint) bool {
	txn := s.begin()
	for _, bundle := range constraint.Bundles {
		if s.placeConstraintBundle(bundle) {
			continue
		}
		txn.rollback()
		return false
	}
	txn.commit()
	return true
}

// placeConstraintBundle tries existing CLUSTER_RESOURCE_CONSTRAINT
// capacity first, in working-set order, then mints the best-scoring type
// that can hold it, respecting the per-type and global bounds.
func (s *scheduler) placeConstraintBundle(bundle v1alpha1.ResourceBundle) bool {
	for _, n := range s.nodes {
		if n.Status == v1alpha1.SchedulingNodeToTerminate {
			continue
		}
		if n.Fits(v1alpha1.SourceClusterResourceConstraint, bundle) {
			n.Place(v1alpha1.SourceClusterResourceConstraint, bundle)
			return true
		}
	}
	n, ok := s.mintBest(bundle, s.req.ConserveGPUNodes)
	if !ok {
		return false
	}
	n.Place(v1alpha1.SourceClusterResourceConstraint, bundle)
	return true
}
