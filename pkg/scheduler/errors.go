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

import "fmt"

// ConfigError is fatal: the caller should skip this tick entirely (§7).
// It covers a request that fails validation (including
// min_worker_nodes > max_worker_nodes) and a head instance whose node type
// is missing from the catalog while the launch-config check is enabled.
// Demand bundles are not checked against the node type catalog.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

func newConfigError(format string, args ...interface{}) error {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

// InvariantError is fatal: it names a SchedulingNode with a negative
// resource balance or a dual status, either of which means the whole call
// must be discarded (§7).
type InvariantError struct {
	msg string
}

func (e *InvariantError) Error() string { return e.msg }

func newInvariantError(format string, args ...interface{}) error {
	return &InvariantError{msg: fmt.Sprintf(format, args...)}
}
