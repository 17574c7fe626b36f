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

package scheduling

import (
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ray-project/autoscaler-scheduler/pkg/apis/v1alpha1"
	"github.com/ray-project/autoscaler-scheduler/pkg/resources"
)

// concurrentScoringThreshold is the catalog size at or above which RankNodeTypes
// scores candidates across multiple goroutines instead of one. Below it,
// goroutine setup costs more than the scoring work it would save.
const concurrentScoringThreshold = 64

// typeNameCollator gives the (type-name asc) tiebreak in NodeTypeScore a
// locale-stable ordering instead of a bare byte-wise "<", the way the rest
// of this stack orders user-facing strings.
var typeNameCollator = collate.New(language.Und)

// NodeTypeScore is the comparable tuple node-type scoring produces for one
// candidate type against one request (§4.6). It is never hand-compared
// field by field outside of Less; treat it as an opaque ranking key.
type NodeTypeScore struct {
	TypeName string

	// distinctDimensions is component A: how many of the request's
	// resource dimensions this type actually provides. Higher is better.
	distinctDimensions int
	// gpuConserved is component C: true when this type should NOT be
	// penalized for carrying unused GPU capacity. True sorts ahead of
	// false.
	gpuConserved bool
	// utilizationRatio is component B: average per-resource utilization
	// this request would achieve on this type. Higher is better.
	utilizationRatio float64
}

// ScoreNodeType computes the §4.6 scoring tuple for candidate type cfg
// against demand. conserveGPUNodes gates component C.
func ScoreNodeType(cfg v1alpha1.NodeTypeConfig, demand v1alpha1.ResourceBundle, conserveGPUNodes bool) NodeTypeScore {
	dims := resources.DistinctDimensions(demand)
	provided := 0
	for _, d := range dims {
		if cfg.Resources[d] > 0 {
			provided++
		}
	}

	gpuConserved := true
	if conserveGPUNodes && resources.HasGPU(cfg.Resources) && !resources.HasGPU(demand) {
		gpuConserved = false
	}

	var ratioSum float64
	var n int
	filtered := resources.Filter(demand)
	for r, qty := range filtered {
		if qty <= 0 {
			continue
		}
		n++
		capacity := cfg.Resources[r]
		if capacity <= 0 {
			// Doesn't provide this resource at all; contributes no
			// utilization and (separately) would fail Fits().
			continue
		}
		ratioSum += qty / capacity
	}
	var ratio float64
	if n > 0 {
		ratio = ratioSum / float64(n)
	}

	return NodeTypeScore{
		TypeName:           cfg.Name,
		distinctDimensions: provided,
		gpuConserved:       gpuConserved,
		utilizationRatio:   ratio,
	}
}

// Less reports whether s ranks strictly better than other: (A desc,
// GPU-conservation desc, B desc, type-name asc).
func (s NodeTypeScore) Less(other NodeTypeScore) bool {
	if s.distinctDimensions != other.distinctDimensions {
		return s.distinctDimensions > other.distinctDimensions
	}
	if s.gpuConserved != other.gpuConserved {
		return s.gpuConserved
	}
	if s.utilizationRatio != other.utilizationRatio {
		return s.utilizationRatio > other.utilizationRatio
	}
	return typeNameCollator.CompareString(s.TypeName, other.TypeName) < 0
}

// RankNodeTypes scores every candidate whose total resources can satisfy
// demand at all (ignoring current availability) and returns them best
// first. Types that could never run demand regardless of current load are
// excluded rather than ranked last, since minting one would be pointless.
// Large catalogs are scored concurrently: each worker computes
// NodeTypeScore for its own slice of candidates independently, so there is
// nothing to synchronize beyond the errgroup join.
func RankNodeTypes(candidates []v1alpha1.NodeTypeConfig, demand v1alpha1.ResourceBundle, conserveGPUNodes bool) []NodeTypeScore {
	raw := make([]*NodeTypeScore, len(candidates))

	if len(candidates) < concurrentScoringThreshold {
		for i, c := range candidates {
			if !resources.Fits(demand, c.Resources) {
				continue
			}
			score := ScoreNodeType(c, demand, conserveGPUNodes)
			raw[i] = &score
		}
	} else {
		workers := runtime.GOMAXPROCS(0)
		chunk := (len(candidates) + workers - 1) / workers
		g, _ := errgroup.WithContext(context.Background())
		for w := 0; w < workers; w++ {
			start, end := w*chunk, (w+1)*chunk
			if start >= len(candidates) {
				break
			}
			if end > len(candidates) {
				end = len(candidates)
			}
			g.Go(func() error {
				for i := start; i < end; i++ {
					if !resources.Fits(demand, candidates[i].Resources) {
						continue
					}
					score := ScoreNodeType(candidates[i], demand, conserveGPUNodes)
					raw[i] = &score
				}
				return nil
			})
		}
		_ = g.Wait() // scoring never returns an error; this only joins workers
	}

	scores := make([]NodeTypeScore, 0, len(candidates))
	for _, s := range raw {
		if s != nil {
			scores = append(scores, *s)
		}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].Less(scores[j]) })
	return scores
}

// BestNodeType ranks candidates and returns the winning type name plus
// whether any candidate could run demand at all.
func BestNodeType(candidates []v1alpha1.NodeTypeConfig, demand v1alpha1.ResourceBundle, conserveGPUNodes bool) (string, bool) {
	scores := RankNodeTypes(candidates, demand, conserveGPUNodes)
	if len(scores) == 0 {
		return "", false
	}
	return scores[0].TypeName, true
}
