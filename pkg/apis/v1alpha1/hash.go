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

import (
	"fmt"

	"github.com/mitchellh/hashstructure/v2"
)

// ComputeLaunchConfigHash fingerprints the launch-relevant fields of a
// NodeTypeConfig the same way the catalog owner (the Instance Manager,
// out of scope here) is expected to, so that an ingested instance's
// LaunchConfigHash can be compared against the catalog's current hash for
// its type (§4.1). The scheduler itself never calls this: it treats
// LaunchConfigHash as an opaque string on both sides of the comparison.
// This helper exists for callers and tests that need to derive one
// deterministically instead of hand-picking a string.
func ComputeLaunchConfigHash(cfg NodeTypeConfig) (string, error) {
	h, err := hashstructure.Hash(struct {
		Resources ResourceBundle
		Labels    map[string]string
	}{
		Resources: cfg.Resources,
		Labels:    cfg.Labels,
	}, hashstructure.FormatV2, &hashstructure.HashOptions{
		SlicesAsSets:    true,
		IgnoreZeroValue: true,
		ZeroNil:         true,
	})
	if err != nil {
		return "", fmt.Errorf("hashing node type config %q: %w", cfg.Name, err)
	}
	return fmt.Sprint(h), nil
}
