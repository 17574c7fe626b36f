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

// Package settings holds the facade-level tunables that sit around the
// scheduler's pure decision function: a cluster label, the defaults
// applied when a SchedulingRequest leaves a tunable unset, and the
// batching window the facade that calls Schedule on a timer uses to
// decide when a demand snapshot is "settled" enough to act on. None of
// this crosses into pkg/scheduler itself.
package settings

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

type contextKey struct{}

var validate = validator.New()

// Default mirrors the teacher's defaultSettings: a zero-config starting
// point that Validate() accepts outright.
var Default = Settings{
	ClusterName:         "default",
	BatchMaxDuration:    10 * time.Second,
	BatchIdleDuration:   time.Second,
	DefaultIdleTimeoutS: 60,
}

// Settings is the facade's process-wide configuration.
type Settings struct {
	ClusterName string `validate:"required"`

	// BatchMaxDuration and BatchIdleDuration bound how long the facade
	// coalesces incoming demand before invoking Schedule once, the way the
	// teacher's provisioner batches queued pods before a scheduling round.
	BatchMaxDuration  time.Duration `validate:"required"`
	BatchIdleDuration time.Duration `validate:"required"`

	// DefaultIdleTimeoutS is applied by the facade when a
	// SchedulingRequest's IdleTimeoutS is left nil, rather than silently
	// disabling idle termination.
	DefaultIdleTimeoutS float64 `validate:"gte=0"`
}

// FromEnv builds Settings from environment variables, falling back to
// Default for anything unset. Unlike the teacher's ConfigMap-sourced
// settings, this facade has no cluster-side config object to watch; env
// vars are the simplest ambient source for a CLI-launched process.
func FromEnv() (Settings, error) {
	s := Default
	if v, ok := os.LookupEnv("SCHEDULER_CLUSTER_NAME"); ok {
		s.ClusterName = v
	}
	if v, ok := os.LookupEnv("SCHEDULER_BATCH_MAX_DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, fmt.Errorf("parsing SCHEDULER_BATCH_MAX_DURATION: %w", err)
		}
		s.BatchMaxDuration = d
	}
	if v, ok := os.LookupEnv("SCHEDULER_BATCH_IDLE_DURATION"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, fmt.Errorf("parsing SCHEDULER_BATCH_IDLE_DURATION: %w", err)
		}
		s.BatchIdleDuration = d
	}
	if v, ok := os.LookupEnv("SCHEDULER_DEFAULT_IDLE_TIMEOUT_S"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return s, fmt.Errorf("parsing SCHEDULER_DEFAULT_IDLE_TIMEOUT_S: %w", err)
		}
		s.DefaultIdleTimeoutS = f
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks the struct tags above plus the one cross-field rule
// validator tags can't express.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if s.BatchIdleDuration > s.BatchMaxDuration {
		return fmt.Errorf("batchIdleDuration (%s) must not exceed batchMaxDuration (%s)", s.BatchIdleDuration, s.BatchMaxDuration)
	}
	return nil
}

// ToContext installs s for FromContext to retrieve further down the call
// chain, the same seam the teacher's settings package uses.
func ToContext(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the Settings installed on ctx, or Default if none
// was installed. Unlike the teacher, a missing value here isn't a
// developer error worth panicking over: the facade always has sane
// defaults to fall back to.
func FromContext(ctx context.Context) Settings {
	if s, ok := ctx.Value(contextKey{}).(Settings); ok {
		return s
	}
	return Default
}
