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

// Package metrics mirrors the teacher's pkg/metrics package: counters
// registered on a prometheus.Registerer the caller owns. The scheduling
// decision function itself stays side-effect free (pkg/scheduler.Schedule
// never touches these) — only the thin facade that wraps a Schedule call
// increments them, so the pure function in §1 stays pure.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const Namespace = "resource_demand_scheduler"

var (
	NodesLaunchedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "nodes",
			Name:      "launched_total",
			Help:      "Number of nodes decided for launch, labeled by node type.",
		},
		[]string{"node_type"},
	)
	NodesTerminatedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "nodes",
			Name:      "terminated_total",
			Help:      "Number of nodes decided for termination, labeled by cause.",
		},
		[]string{"cause"},
	)
	InfeasibleDemandCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "demand",
			Name:      "infeasible_total",
			Help:      "Number of demand items the scheduler could not place, labeled by kind.",
		},
		[]string{"kind"},
	)
)

// MustRegister registers the package's collectors on reg. Callers own
// their registry; the scheduler package never registers itself.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(NodesLaunchedCounter, NodesTerminatedCounter, InfeasibleDemandCounter)
}
