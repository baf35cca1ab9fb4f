package services

import (
	"math"
	"math/rand"
	"sort"

	"github.com/creditrust-labs/crag-cli/internal/core/domain"
)

// stratifiedSample downsamples records to roughly target while
// preserving the product distribution. Each product group is reduced at
// the same fraction target/total, so rare products keep proportional
// representation instead of being crowded out by the dominant ones.
//
// The seed fixes the RNG so repeated builds over the same corpus select
// the same records. When the candidate set already fits the target (or
// target is zero, meaning sampling is disabled), the full set is
// returned unchanged.
func stratifiedSample(records []domain.ComplaintRecord, target int, seed int64) []domain.ComplaintRecord {
	if target <= 0 || len(records) <= target {
		return records
	}

	// Group record positions by product.
	groups := make(map[string][]int)
	for i, r := range records {
		groups[r.Product] = append(groups[r.Product], i)
	}

	// Iterate products in sorted order so a single seeded RNG yields the
	// same selection on every run.
	products := make([]string, 0, len(groups))
	for p := range groups {
		products = append(products, p)
	}
	sort.Strings(products)

	fraction := float64(target) / float64(len(records))
	rng := rand.New(rand.NewSource(seed))

	var selected []int
	for _, p := range products {
		group := groups[p]
		take := int(math.Round(fraction * float64(len(group))))
		if take > len(group) {
			take = len(group)
		}
		if take == 0 {
			continue
		}

		shuffled := make([]int, len(group))
		copy(shuffled, group)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		selected = append(selected, shuffled[:take]...)
	}

	// Restore corpus order so downstream chunking and indexing see
	// records in the same sequence the source delivered them.
	sort.Ints(selected)

	sampled := make([]domain.ComplaintRecord, len(selected))
	for i, idx := range selected {
		sampled[i] = records[idx]
	}
	return sampled
}
