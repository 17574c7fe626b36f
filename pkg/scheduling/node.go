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

// Package scheduling holds the working entity of one Schedule call (the
// SchedulingNode), the label matching standalone placement constraints
// need, and the node-type scoring tuple. Affinity/anti-affinity
// bookkeeping between gang members lives in pkg/scheduler. pkg/scheduler composes these
// into the eight-stage pipeline; nothing in this package knows about
// stages or the overall request/reply shape.
package scheduling

import (
	"fmt"

	"github.com/imdario/mergo"

	"github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"
	"github.com/ray-project/autoscaler-scheduler/pkg/resources"
)

// Node is the working entity derived from an instance, or freshly minted,
// for the duration of one Schedule call (§3's SchedulingNode).
type Node struct {
	NodeType         string
	NodeKind         v1alpha1.NodeKind
	TotalResources   v1alpha1.ResourceBundle
	Labels           map[string]string
	LaunchConfigHash string

	// AvailableForSched holds the two independent accounting views keyed
	// by ResourceRequestSource (§3). Never alias them.
	AvailableForSched map[v1alpha1.ResourceRequestSource]v1alpha1.ResourceBundle

	Status           v1alpha1.SchedulingNodeStatus
	TerminationCause v1alpha1.TerminationCause // only meaningful if Status == TO_TERMINATE

	RayNodeID      string
	IMInstanceID   string
	IdleDurationMs int64

	// InstanceStatus is the Instance Manager's lifecycle status at ingest
	// time. Zero value for pending (not-yet-minted) nodes, which are
	// therefore never "running" for victim-ordering purposes (§4.3).
	InstanceStatus v1alpha1.InstanceStatus

	// Pending is true for nodes minted during this call (min-worker,
	// constraint, gang, or demand scale-up) that do not correspond to an
	// already-running instance.
	Pending bool
}

// NewPending mints a fresh SCHEDULABLE node of the given type, as stages
// 2, 4, 5, and 6 do when no existing capacity satisfies demand.
func NewPending(nodeType string, cfg v1alpha1.NodeTypeConfig) *Node {
	n := &Node{
		NodeType:         nodeType,
		NodeKind:         v1alpha1.NodeKindWorker,
		TotalResources:   cfg.Resources.Clone(),
		Labels:           cloneLabels(cfg.Labels),
		LaunchConfigHash: cfg.LaunchConfigHash,
		Status:           v1alpha1.SchedulingNodeSchedulable,
		Pending:          true,
	}
	n.AvailableForSched = map[v1alpha1.ResourceRequestSource]v1alpha1.ResourceBundle{
		v1alpha1.SourcePendingDemand:             cfg.Resources.Clone(),
		v1alpha1.SourceClusterResourceConstraint: cfg.Resources.Clone(),
	}
	return n
}

// NewFromInstance implements §4.1 ingest for one instance. It returns
// (nil, nil) when the instance yields no SchedulingNode at all (no
// IMInstance record, a negative lifecycle status, or an unknown type with
// the launch-config check disabled).
func NewFromInstance(instance v1alpha1.AutoscalerInstance, configs map[string]v1alpha1.NodeTypeConfig, disableLaunchConfigCheck bool) (*Node, error) {
	im := instance.IMInstance
	if im == nil {
		return nil, nil
	}
	if im.Status.IsNegative() {
		return nil, nil
	}
	cfg, known := configs[im.InstanceType]
	if !known && disableLaunchConfigCheck {
		return nil, nil
	}

	n := &Node{
		NodeType:         im.InstanceType,
		NodeKind:         im.NodeKind,
		LaunchConfigHash: im.LaunchConfigHash,
		Status:           v1alpha1.SchedulingNodeSchedulable,
		IMInstanceID:     im.InstanceID,
		InstanceStatus:   im.Status,
	}

	if !known {
		// Unknown type, but the check isn't disabled: §4.1 still fails
		// the instance to outdated for workers (it can no longer be
		// matched against a catalog entry). Heads are never marked
		// outdated (§9 open question).
		if im.NodeKind == v1alpha1.NodeKindHead {
			return nil, fmt.Errorf("node type %q for head instance %q is not in the catalog; cannot ingest without a config", im.InstanceType, im.InstanceID)
		}
		n.Status = v1alpha1.SchedulingNodeToTerminate
		n.TerminationCause = v1alpha1.TerminationCauseOutdated
		n.TotalResources = v1alpha1.ResourceBundle{}
		n.AvailableForSched = emptyViews()
		return n, nil
	}

	n.TotalResources = cfg.Resources.Clone()
	n.Labels = mergedLabels(cfg.Labels, instance.RayNode)

	if im.NodeKind != v1alpha1.NodeKindHead && im.LaunchConfigHash != cfg.LaunchConfigHash {
		n.Status = v1alpha1.SchedulingNodeToTerminate
		n.TerminationCause = v1alpha1.TerminationCauseOutdated
	}

	pendingAvail := cfg.Resources.Clone()
	if instance.RayNode != nil {
		pendingAvail = instance.RayNode.AvailableResources.Clone()
		n.RayNodeID = instance.RayNode.NodeID
		n.IdleDurationMs = instance.RayNode.IdleDurationMs
	}
	n.AvailableForSched = map[v1alpha1.ResourceRequestSource]v1alpha1.ResourceBundle{
		v1alpha1.SourcePendingDemand:             pendingAvail,
		v1alpha1.SourceClusterResourceConstraint: cfg.Resources.Clone(),
	}
	return n, nil
}

func emptyViews() map[v1alpha1.ResourceRequestSource]v1alpha1.ResourceBundle {
	return map[v1alpha1.ResourceRequestSource]v1alpha1.ResourceBundle{
		v1alpha1.SourcePendingDemand:             {},
		v1alpha1.SourceClusterResourceConstraint: {},
	}
}

func cloneLabels(labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// mergedLabels merges catalog labels with ray dynamic labels, ray labels
// winning on collision (§4.1). mergo.WithOverride lets the override map
// win on conflicting keys, which is exactly this semantic.
func mergedLabels(catalogLabels map[string]string, ray *v1alpha1.RayNode) map[string]string {
	out := cloneLabels(catalogLabels)
	if ray == nil || len(ray.DynamicLabels) == 0 {
		return out
	}
	dynamic := cloneLabels(ray.DynamicLabels)
	if err := mergo.Merge(&out, dynamic, mergo.WithOverride); err != nil {
		// mergo only errors on invalid destination kinds; out is always a
		// non-nil map[string]string here.
		panic(fmt.Sprintf("merging dynamic labels: %v", err))
	}
	return out
}

// IsRunning reports whether the node is actually up, as opposed to merely
// in flight or not yet minted. Used by max-worker victim ordering (§4.3:
// prefer to kill instances that never finished coming up).
func (n *Node) IsRunning() bool {
	return n.InstanceStatus.IsRunning()
}

// Matches reports whether the node carries label key=value.
func (n *Node) Matches(key, value string) bool {
	return n.Labels[key] == value
}

// MatchesConstraints reports whether the node satisfies every placement
// constraint attached to a standalone (non-gang) ResourceRequest: AFFINITY
// requires the node to carry the label, ANTI_AFFINITY requires it not to.
// Inside a gang, placement constraints instead describe relationships
// between gang members and are handled by the gang scheduling stage, not
// here.
func (n *Node) MatchesConstraints(constraints []v1alpha1.PlacementConstraint) bool {
	for _, c := range constraints {
		matches := n.Matches(c.LabelKey, c.LabelValue)
		switch c.Kind {
		case v1alpha1.PlacementAffinity:
			if !matches {
				return false
			}
		case v1alpha1.PlacementAntiAffinity:
			if matches {
				return false
			}
		}
	}
	return true
}

// Fits reports whether demand can be placed on this node's view for
// source without mutating anything.
func (n *Node) Fits(source v1alpha1.ResourceRequestSource, demand v1alpha1.ResourceBundle) bool {
	return resources.Fits(demand, n.AvailableForSched[source])
}

// Place deducts demand from the given view. Caller must have already
// checked Fits; Place does not re-check. Implicit resources (§4.6,
// GLOSSARY) are satisfied by any node and never actually accounted for,
// so they are filtered out here the same way Fits filters them before
// comparing — otherwise a demand bundle naming a resource no node
// advertises would write a phantom negative balance and trip the
// per-node invariant.
func (n *Node) Place(source v1alpha1.ResourceRequestSource, demand v1alpha1.ResourceBundle) {
	n.AvailableForSched[source] = resources.Subtract(n.AvailableForSched[source], resources.Filter(demand))
}

// Release is the inverse of Place, used to undo a tentative placement
// (the best-fit probe in demand scheduling). Transaction rollback uses
// Snapshot/Restore instead.
func (n *Node) Release(source v1alpha1.ResourceRequestSource, demand v1alpha1.ResourceBundle) {
	n.AvailableForSched[source] = resources.Merge(n.AvailableForSched[source], resources.Filter(demand))
}

// Snapshot returns a deep copy of both accounting views, for the
// transactional overlay gang/constraint scheduling needs (§9: "A clean
// design uses a transactional overlay: allocate on a copy, commit or
// discard").
func (n *Node) Snapshot() map[v1alpha1.ResourceRequestSource]v1alpha1.ResourceBundle {
	out := make(map[v1alpha1.ResourceRequestSource]v1alpha1.ResourceBundle, len(n.AvailableForSched))
	for k, v := range n.AvailableForSched {
		out[k] = v.Clone()
	}
	return out
}

// Restore replaces the accounting views with a prior Snapshot.
func (n *Node) Restore(snapshot map[v1alpha1.ResourceRequestSource]v1alpha1.ResourceBundle) {
	n.AvailableForSched = snapshot
}

// UtilizationScore measures how tightly packed the node is: the total
// fraction of total capacity currently in use, averaged over resources
// that have any total capacity. Higher means more utilized. Used both for
// tight bin-packing (§4.6: prefer the node that ends up more utilized)
// and for termination victim ordering (§4.3: prefer to keep the more
// utilized node, so victims have the *lowest* score).
func (n *Node) UtilizationScore(source v1alpha1.ResourceRequestSource) float64 {
	available := n.AvailableForSched[source]
	var sum float64
	var count int
	for r, total := range n.TotalResources {
		if resources.IsImplicit(r) || total <= 0 {
			continue
		}
		used := total - available[r]
		sum += used / total
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// Invariant checks the per-node invariant from §3: every accounted
// resource balance is within [0, total].
func (n *Node) Invariant() error {
	for source, avail := range n.AvailableForSched {
		for r, v := range avail {
			if v < -1e-9 {
				return fmt.Errorf("node type %q (instance %q): negative available %s=%v for source %s", n.NodeType, n.IMInstanceID, r, v, source)
			}
			if total, ok := n.TotalResources[r]; ok && v > total+1e-9 {
				return fmt.Errorf("node type %q (instance %q): available %s=%v exceeds total %v for source %s", n.NodeType, n.IMInstanceID, r, v, total, source)
			}
		}
		if n.Status == v1alpha1.SchedulingNodeToTerminate && n.TerminationCause == "" {
			return fmt.Errorf("node type %q (instance %q): TO_TERMINATE without a cause", n.NodeType, n.IMInstanceID)
		}
	}
	return nil
}
