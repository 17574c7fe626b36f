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

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
)

var validate = validator.New()

// Validate checks the structural invariants a NodeTypeConfig must hold
// regardless of demand (§7: "min_worker_nodes > max_worker_nodes" is a
// config error, not an infeasibility).
func (c NodeTypeConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("node type %q: %w", c.Name, err)
	}
	for resourceName, qty := range c.Resources {
		if qty < 0 {
			return fmt.Errorf("node type %q: resource %q has negative capacity %v", c.Name, resourceName, qty)
		}
	}
	return nil
}

// Validate checks every NodeTypeConfig in the request (and that each
// catalog key matches its config's Name), and that MaxNumNodes and
// IdleTimeoutS are non-negative when set. It does not check demand
// against the node type catalog.
func (r SchedulingRequest) Validate() error {
	var errs error
	for name, cfg := range r.NodeTypeConfigs {
		if cfg.Name == "" {
			cfg.Name = name
		}
		if cfg.Name != name {
			errs = multierr.Append(errs, fmt.Errorf("node type catalog key %q does not match NodeTypeConfig.Name %q", name, cfg.Name))
		}
		errs = multierr.Append(errs, cfg.Validate())
	}
	if r.MaxNumNodes != nil && *r.MaxNumNodes < 0 {
		errs = multierr.Append(errs, fmt.Errorf("max_num_nodes must be non-negative, got %d", *r.MaxNumNodes))
	}
	if r.IdleTimeoutS != nil && *r.IdleTimeoutS < 0 {
		errs = multierr.Append(errs, fmt.Errorf("idle_timeout_s must be non-negative, got %v", *r.IdleTimeoutS))
	}
	return errs
}
