package scheduling_test

import (
	"fmt"
	"testing"

	"github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"
	"github.com/ray-project/autoscaler-scheduler/pkg/scheduling"
)

func benchmarkCatalog(n int) []v1alpha1.NodeTypeConfig {
	catalog := make([]v1alpha1.NodeTypeConfig, 0, n)
	for i := 0; i < n; i++ {
		catalog = append(catalog, v1alpha1.NodeTypeConfig{
			Name: fmt.Sprintf("type-%d", i),
			Resources: v1alpha1.ResourceBundle{
				"CPU":    float64(4 + i%8),
				"memory": float64(16 + i%32),
				"GPU":    float64(i % 2),
			},
			MaxWorkerNodes: 100,
		})
	}
	return catalog
}

func BenchmarkRankNodeTypes(b *testing.B) {
	catalog := benchmarkCatalog(100)
	demand := v1alpha1.ResourceBundle{"CPU": 2, "memory": 4}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scheduling.RankNodeTypes(catalog, demand, true)
	}
}

func BenchmarkScoreNodeType(b *testing.B) {
	cfg := benchmarkCatalog(1)[0]
	demand := v1alpha1.ResourceBundle{"CPU": 2, "memory": 4}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		scheduling.ScoreNodeType(cfg, demand, true)
	}
}
