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

import "github.com/ray-project/autoscaler-scheduler/internal/log"

// enforceMinWorkers is stage 2 (§4.2). For every node type whose current
// non-terminating count falls short of min_worker_nodes, mint pending
// nodes to close the gap, capped by the type's own max and the global
// max_num_nodes. Iterates node types in sorted-name order for determinism.
func (s *scheduler) enforceMinWorkers() {
	for _, typeName := range s.sortedTypeNames() {
		cfg := s.req.NodeTypeConfigs[typeName]
		for s.typeCount(typeName) < cfg.MinWorkerNodes {
			if _, ok := s.mint(typeName); !ok {
				log.FromContext(s.ctx).Warnw("cannot satisfy min_worker_nodes under bounds",
					"nodeType", typeName, "minWorkerNodes", cfg.MinWorkerNodes, "current", s.typeCount(typeName))
				break
			}
		}
	}
}
