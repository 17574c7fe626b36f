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

import "github.com/ray-project/autoscaler-scheduler/pkg/scheduling"

// ingest is stage 1 (§4.1). It builds one SchedulingNode per current
// instance, in the order the request listed them, which is the stage's
// deterministic iteration order (§5). An instance that yields no node
// (missing IMInstance, a negative lifecycle status, or an unknown type
// with the launch-config check disabled) is silently dropped; an unknown
// type on a head with the check enabled is a fatal config error.
func (s *scheduler) ingest() error {
	s.nodes = make([]*scheduling.Node, 0, len(s.req.CurrentInstances))
	for _, instance := range s.req.CurrentInstances {
		n, err := scheduling.NewFromInstance(instance, s.req.NodeTypeConfigs, s.req.DisableLaunchConfigCheck)
		if err != nil {
			return newConfigError("ingest: %s", err)
		}
		if n != nil {
			s.nodes = append(s.nodes, n)
		}
	}
	return nil
}
