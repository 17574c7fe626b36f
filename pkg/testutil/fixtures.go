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

// Package testutil provides option-struct builder functions for
// v1alpha1 fixtures, following the teacher's pkg/test convention of one
// function per fixture type that fills sane defaults and applies
// whatever fields the caller passed.
package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"
)

var instanceSeq int64

func nextInstanceID() string {
	return fmt.Sprintf("i-%08x", atomic.AddInt64(&instanceSeq, 1))
}

// NodeTypeConfigOptions overrides NodeTypeConfig's defaults.
type NodeTypeConfigOptions struct {
	Name             string
	Resources        v1alpha1.ResourceBundle
	Labels           map[string]string
	MinWorkerNodes   int
	MaxWorkerNodes   int
	LaunchConfigHash string
}

// NodeTypeConfig returns a NodeTypeConfig with sane defaults: a small CPU
// bundle, no floor, and a max of 10 unless overridden.
func NodeTypeConfig(opts NodeTypeConfigOptions) v1alpha1.NodeTypeConfig {
	cfg := v1alpha1.NodeTypeConfig{
		Name:             opts.Name,
		Resources:        opts.Resources,
		Labels:           opts.Labels,
		MinWorkerNodes:   opts.MinWorkerNodes,
		MaxWorkerNodes:   opts.MaxWorkerNodes,
		LaunchConfigHash: opts.LaunchConfigHash,
	}
	if cfg.Name == "" {
		cfg.Name = "default-type"
	}
	if cfg.Resources == nil {
		cfg.Resources = v1alpha1.ResourceBundle{"CPU": 4, "memory": 16}
	}
	if cfg.MaxWorkerNodes == 0 {
		cfg.MaxWorkerNodes = 10
	}
	if cfg.LaunchConfigHash == "" {
		cfg.LaunchConfigHash = "hash-" + cfg.Name
	}
	return cfg
}

// InstanceOptions overrides AutoscalerInstance's defaults.
type InstanceOptions struct {
	InstanceID         string
	InstanceType       string
	Status             v1alpha1.InstanceStatus
	NodeKind           v1alpha1.NodeKind
	LaunchConfigHash   string
	WithRayNode        bool
	AvailableResources v1alpha1.ResourceBundle
	IdleDurationMs     int64
	DynamicLabels      map[string]string
}

// Instance returns a RAY_RUNNING worker AutoscalerInstance by default.
// A RayNode view is attached only when WithRayNode is set; its available
// resources are exactly AvailableResources (nil when unset), so callers
// pass them explicitly.
func Instance(opts InstanceOptions) v1alpha1.AutoscalerInstance {
	if opts.InstanceID == "" {
		opts.InstanceID = nextInstanceID()
	}
	if opts.Status == "" {
		opts.Status = v1alpha1.InstanceStatusRayRunning
	}
	if opts.NodeKind == "" {
		opts.NodeKind = v1alpha1.NodeKindWorker
	}

	instance := v1alpha1.AutoscalerInstance{
		IMInstance: &v1alpha1.IMInstance{
			InstanceID:       opts.InstanceID,
			InstanceType:     opts.InstanceType,
			Status:           opts.Status,
			LaunchConfigHash: opts.LaunchConfigHash,
			NodeKind:         opts.NodeKind,
		},
	}
	if opts.WithRayNode {
		instance.RayNode = &v1alpha1.RayNode{
			NodeID:             "ray-" + opts.InstanceID,
			AvailableResources: opts.AvailableResources,
			IdleDurationMs:     opts.IdleDurationMs,
			DynamicLabels:      opts.DynamicLabels,
		}
	}
	return instance
}
