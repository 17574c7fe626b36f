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

// Package resources provides the small set of arithmetic and comparison
// helpers the scheduler needs over v1alpha1.ResourceBundle. The teacher
// repo keeps the analogous helpers (Merge, Subtract, Fits, Cmp,
// MaxResources) in a dedicated utils/resources package rather than
// inlining resource math wherever it's needed; we follow the same split
// so every stage does resource arithmetic the same way.
package resources

import (
	"strings"

	"github.com/samber/lo"

	"github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"
)

// IsImplicit reports whether a resource name is the reserved
// "satisfied-by-any" kind (§4.6, GLOSSARY).
func IsImplicit(name string) bool {
	return strings.HasPrefix(name, v1alpha1.ImplicitResourcePrefix)
}

// Filter drops implicit resources from a bundle so the remainder can be
// feasibility-checked as if implicit resources didn't exist.
func Filter(b v1alpha1.ResourceBundle) v1alpha1.ResourceBundle {
	out := make(v1alpha1.ResourceBundle, len(b))
	for k, v := range b {
		if IsImplicit(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// Merge sums two bundles, resource by resource.
func Merge(bundles ...v1alpha1.ResourceBundle) v1alpha1.ResourceBundle {
	out := v1alpha1.ResourceBundle{}
	for _, b := range bundles {
		for k, v := range b {
			out[k] += v
		}
	}
	return out
}

// Subtract returns a-b, resource by resource. A resource present only in a
// keeps its value; one present only in b is negated.
func Subtract(a, b v1alpha1.ResourceBundle) v1alpha1.ResourceBundle {
	out := a.Clone()
	if out == nil {
		out = v1alpha1.ResourceBundle{}
	}
	for k, v := range b {
		out[k] -= v
	}
	return out
}

// Fits reports whether every (non-implicit) resource demand fits within
// available, i.e. demand[r] <= available[r] for all r demand asks for.
func Fits(demand, available v1alpha1.ResourceBundle) bool {
	for k, v := range Filter(demand) {
		if v <= 0 {
			continue
		}
		if available[k] < v {
			return false
		}
	}
	return true
}

// NonNegative reports whether every value in the bundle is >= 0, the
// per-resource half of the SchedulingNode invariant in §3.
func NonNegative(b v1alpha1.ResourceBundle) bool {
	for _, v := range b {
		if v < 0 {
			return false
		}
	}
	return true
}

// MaxResources returns, for each resource name appearing in any bundle,
// the maximum value seen across bundles (mirrors the teacher's
// subtractMax helper). The scheduler stages do not call it.
func MaxResources(bundles ...v1alpha1.ResourceBundle) v1alpha1.ResourceBundle {
	out := v1alpha1.ResourceBundle{}
	for _, b := range bundles {
		for k, v := range b {
			if cur, ok := out[k]; !ok || v > cur {
				out[k] = v
			}
		}
	}
	return out
}

// DistinctDimensions returns the resource names in demand that have a
// positive quantity, excluding implicit resources. Used by scoring
// component A (§4.6).
func DistinctDimensions(demand v1alpha1.ResourceBundle) []string {
	return lo.Keys(lo.PickBy(Filter(demand), func(_ string, v float64) bool { return v > 0 }))
}

// HasGPU reports whether the bundle carries any resource named "GPU" with
// a positive quantity.
func HasGPU(b v1alpha1.ResourceBundle) bool {
	return b["GPU"] > 0
}
