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

package resources_test

import (
	"testing"

	"github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"
	"github.com/ray-project/autoscaler-scheduler/pkg/resources"
)

func TestFitsIgnoresImplicitResources(t *testing.T) {
	demand := v1alpha1.ResourceBundle{"implicit_resource_foo": 1000}
	available := v1alpha1.ResourceBundle{}
	if !resources.Fits(demand, available) {
		t.Fatalf("expected implicit-only demand to fit on an empty node")
	}
}

func TestFitsRejectsOverdraw(t *testing.T) {
	demand := v1alpha1.ResourceBundle{"CPU": 4}
	available := v1alpha1.ResourceBundle{"CPU": 2}
	if resources.Fits(demand, available) {
		t.Fatalf("expected CPU:4 demand not to fit CPU:2 available")
	}
}

func TestSubtractMerge(t *testing.T) {
	total := v1alpha1.ResourceBundle{"CPU": 4, "GPU": 1}
	used := v1alpha1.ResourceBundle{"CPU": 1}
	remaining := resources.Subtract(total, used)
	if remaining["CPU"] != 3 || remaining["GPU"] != 1 {
		t.Fatalf("unexpected remaining %v", remaining)
	}
	merged := resources.Merge(remaining, used)
	if merged["CPU"] != 4 {
		t.Fatalf("expected merge to restore CPU to 4, got %v", merged["CPU"])
	}
}

func TestDistinctDimensionsExcludesImplicit(t *testing.T) {
	demand := v1alpha1.ResourceBundle{"CPU": 1, "GPU": 0, "implicit_resource_foo": 5}
	dims := resources.DistinctDimensions(demand)
	if len(dims) != 1 || dims[0] != "CPU" {
		t.Fatalf("expected only CPU, got %v", dims)
	}
}

func TestMaxResources(t *testing.T) {
	a := v1alpha1.ResourceBundle{"CPU": 2}
	b := v1alpha1.ResourceBundle{"CPU": 8, "GPU": 1}
	m := resources.MaxResources(a, b)
	if m["CPU"] != 8 || m["GPU"] != 1 {
		t.Fatalf("unexpected max %v", m)
	}
}
