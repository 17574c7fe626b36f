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

package scheduler_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"
	"github.com/ray-project/autoscaler-scheduler/pkg/scheduler"
	"github.com/ray-project/autoscaler-scheduler/pkg/testutil"
)

var _ = Describe("Schedule", func() {
	var ctx context.Context
	var smallType, bigType v1alpha1.NodeTypeConfig

	BeforeEach(func() {
		ctx = context.Background()
		smallType = testutil.NodeTypeConfig(testutil.NodeTypeConfigOptions{
			Name:           "small",
			Resources:      v1alpha1.ResourceBundle{"CPU": 4, "memory": 16},
			MaxWorkerNodes: 10,
		})
		bigType = testutil.NodeTypeConfig(testutil.NodeTypeConfigOptions{
			Name:           "big",
			Resources:      v1alpha1.ResourceBundle{"CPU": 16, "memory": 64, "GPU": 1},
			MaxWorkerNodes: 10,
		})
	})

	It("mints nodes to satisfy min_worker_nodes", func() {
		smallType.MinWorkerNodes = 3
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs: map[string]v1alpha1.NodeTypeConfig{"small": smallType},
		}
		reply, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.ToLaunch).To(ConsistOf(v1alpha1.LaunchRequest{InstanceType: "small", Count: 3}))
	})

	It("mints the best-scoring type for a standalone resource request", func() {
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs: map[string]v1alpha1.NodeTypeConfig{"small": smallType, "big": bigType},
			ResourceRequests: []v1alpha1.ResourceRequestWithCount{
				{Request: v1alpha1.ResourceRequest{ResourcesBundle: v1alpha1.ResourceBundle{"CPU": 2}}, Count: 1},
			},
		}
		reply, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.ToLaunch).To(ConsistOf(v1alpha1.LaunchRequest{InstanceType: "small", Count: 1}))
		Expect(reply.InfeasibleResourceRequests).To(BeEmpty())
	})

	It("reports a resource request infeasible when no type can hold it", func() {
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs: map[string]v1alpha1.NodeTypeConfig{"small": smallType},
			ResourceRequests: []v1alpha1.ResourceRequestWithCount{
				{Request: v1alpha1.ResourceRequest{ResourcesBundle: v1alpha1.ResourceBundle{"CPU": 1000}}, Count: 1},
			},
		}
		reply, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.ToLaunch).To(BeEmpty())
		Expect(reply.InfeasibleResourceRequests).To(HaveLen(1))
	})

	It("places an existing gang atomically and rolls back when one member cannot fit", func() {
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs: map[string]v1alpha1.NodeTypeConfig{"small": smallType},
			GangResourceRequests: []v1alpha1.GangResourceRequest{
				{Requests: []v1alpha1.ResourceRequest{
					{ResourcesBundle: v1alpha1.ResourceBundle{"CPU": 2}},
					{ResourcesBundle: v1alpha1.ResourceBundle{"CPU": 9999}},
				}},
			},
		}
		reply, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.ToLaunch).To(BeEmpty())
		Expect(reply.InfeasibleGangResourceRequests).To(HaveLen(1))
	})

	It("co-locates AFFINITY members of a gang on the same node", func() {
		bigType.MaxWorkerNodes = 1
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs: map[string]v1alpha1.NodeTypeConfig{"big": bigType},
			GangResourceRequests: []v1alpha1.GangResourceRequest{
				{Requests: []v1alpha1.ResourceRequest{
					{
						ResourcesBundle:      v1alpha1.ResourceBundle{"CPU": 1},
						PlacementConstraints: []v1alpha1.PlacementConstraint{{Kind: v1alpha1.PlacementAffinity, LabelKey: "group", LabelValue: "a"}},
					},
					{
						ResourcesBundle:      v1alpha1.ResourceBundle{"CPU": 1},
						PlacementConstraints: []v1alpha1.PlacementConstraint{{Kind: v1alpha1.PlacementAffinity, LabelKey: "group", LabelValue: "a"}},
					},
				}},
			},
		}
		reply, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.InfeasibleGangResourceRequests).To(BeEmpty())
		Expect(reply.ToLaunch).To(ConsistOf(v1alpha1.LaunchRequest{InstanceType: "big", Count: 1}))
	})

	It("fails the whole cluster resource constraint when one bundle can't be held", func() {
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs: map[string]v1alpha1.NodeTypeConfig{"small": smallType},
			ClusterResourceConstraints: []v1alpha1.ClusterResourceConstraint{
				{Bundles: []v1alpha1.ResourceBundle{{"CPU": 2}, {"CPU": 999999}}},
			},
		}
		reply, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.ToLaunch).To(BeEmpty())
		Expect(reply.InfeasibleClusterResourceConstraints).To(HaveLen(1))
	})

	It("terminates idle nodes down to the floor, never below min_worker_nodes", func() {
		smallType.MinWorkerNodes = 1
		timeout := 10.0
		instances := []v1alpha1.AutoscalerInstance{
			testutil.Instance(testutil.InstanceOptions{InstanceType: "small", LaunchConfigHash: smallType.LaunchConfigHash, WithRayNode: true, AvailableResources: smallType.Resources, IdleDurationMs: 999999}),
			testutil.Instance(testutil.InstanceOptions{InstanceType: "small", LaunchConfigHash: smallType.LaunchConfigHash, WithRayNode: true, AvailableResources: smallType.Resources, IdleDurationMs: 999999}),
		}
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs:  map[string]v1alpha1.NodeTypeConfig{"small": smallType},
			CurrentInstances: instances,
			IdleTimeoutS:     &timeout,
		}
		reply, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.ToTerminate).To(HaveLen(1))
		Expect(reply.ToTerminate[0].Cause).To(Equal(v1alpha1.TerminationCauseIdle))
	})

	It("suppresses idle termination entirely while a cluster resource constraint is active", func() {
		timeout := 10.0
		instances := []v1alpha1.AutoscalerInstance{
			testutil.Instance(testutil.InstanceOptions{InstanceType: "small", LaunchConfigHash: smallType.LaunchConfigHash, WithRayNode: true, AvailableResources: smallType.Resources, IdleDurationMs: 999999}),
		}
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs:  map[string]v1alpha1.NodeTypeConfig{"small": smallType},
			CurrentInstances: instances,
			IdleTimeoutS:     &timeout,
			ClusterResourceConstraints: []v1alpha1.ClusterResourceConstraint{
				{Bundles: []v1alpha1.ResourceBundle{{"CPU": 1}}},
			},
		}
		reply, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.ToTerminate).To(BeEmpty())
	})

	It("trims a node type back to its max_worker_nodes, preferring non-running victims", func() {
		smallType.MaxWorkerNodes = 1
		instances := []v1alpha1.AutoscalerInstance{
			testutil.Instance(testutil.InstanceOptions{InstanceType: "small", LaunchConfigHash: smallType.LaunchConfigHash, Status: v1alpha1.InstanceStatusRayRunning, WithRayNode: true, AvailableResources: smallType.Resources}),
			testutil.Instance(testutil.InstanceOptions{InstanceType: "small", LaunchConfigHash: smallType.LaunchConfigHash, Status: v1alpha1.InstanceStatusAllocated}),
		}
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs:  map[string]v1alpha1.NodeTypeConfig{"small": smallType},
			CurrentInstances: instances,
		}
		reply, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(reply.ToTerminate).To(HaveLen(1))
		Expect(reply.ToTerminate[0].Cause).To(Equal(v1alpha1.TerminationCauseMaxNumNodePerType))
		Expect(reply.ToTerminate[0].InstanceID).To(Equal(instances[1].IMInstance.InstanceID))
	})

	It("never terminates a head node", func() {
		maxNodes := 1
		instances := []v1alpha1.AutoscalerInstance{
			testutil.Instance(testutil.InstanceOptions{InstanceType: "small", NodeKind: v1alpha1.NodeKindHead, Status: v1alpha1.InstanceStatusRayRunning, WithRayNode: true, AvailableResources: smallType.Resources}),
			testutil.Instance(testutil.InstanceOptions{InstanceType: "small", LaunchConfigHash: smallType.LaunchConfigHash, Status: v1alpha1.InstanceStatusRayRunning, WithRayNode: true, AvailableResources: smallType.Resources}),
		}
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs:  map[string]v1alpha1.NodeTypeConfig{"small": smallType},
			CurrentInstances: instances,
			MaxNumNodes:      &maxNodes,
		}
		reply, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		for _, t := range reply.ToTerminate {
			Expect(t.InstanceID).NotTo(Equal(instances[0].IMInstance.InstanceID))
		}
	})

	It("rejects min_worker_nodes greater than max_worker_nodes as a config error", func() {
		smallType.MinWorkerNodes = 5
		smallType.MaxWorkerNodes = 2
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs: map[string]v1alpha1.NodeTypeConfig{"small": smallType},
		}
		_, err := scheduler.Schedule(ctx, req)
		Expect(err).To(HaveOccurred())
		Expect(err).To(BeAssignableToTypeOf(&scheduler.ConfigError{}))
	})

	It("is deterministic across repeated calls against the same snapshot", func() {
		smallType.MinWorkerNodes = 2
		req := v1alpha1.SchedulingRequest{
			NodeTypeConfigs: map[string]v1alpha1.NodeTypeConfig{"small": smallType, "big": bigType},
			ResourceRequests: []v1alpha1.ResourceRequestWithCount{
				{Request: v1alpha1.ResourceRequest{ResourcesBundle: v1alpha1.ResourceBundle{"CPU": 2}}, Count: 3},
			},
		}
		first, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		second, err := scheduler.Schedule(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))
	})
})
