package genome

import "sort"

// RegionIndex answers "which regions contain this position" in O(log n + k)
// per chromosome using a sorted-slice approach. It is built once and never
// modified, so concurrent queries need no locking.
type RegionIndex struct {
	chroms map[int]*regionTree
	size   int
}

type regionTree struct {
	regions []*Region // sorted by Start, then End, then input order
	maxEnd  []int64   // maxEnd[i] = max(End) for regions[:i+1]
}

// Build creates an index over regions. It fails with *InvalidRegionError,
// without returning a partial index, if any region has Start > End or an
// unknown chromosome.
func Build(regions []Region) (*RegionIndex, error) {
	byChrom := make(map[int][]*Region)
	for i := range regions {
		r := regions[i]
		if r.Chromosome < 1 || r.Chromosome > ChromosomeMT {
			return nil, &InvalidRegionError{Region: r, Message: "unknown chromosome"}
		}
		if r.Start > r.End {
			return nil, &InvalidRegionError{Region: r, Message: "start is after end"}
		}
		r.Genes = append([]string(nil), r.Genes...)
		byChrom[r.Chromosome] = append(byChrom[r.Chromosome], &r)
	}

	idx := &RegionIndex{chroms: make(map[int]*regionTree, len(byChrom)), size: len(regions)}
	for chrom, rs := range byChrom {
		idx.chroms[chrom] = buildTree(rs)
	}
	return idx, nil
}

func buildTree(regions []*Region) *regionTree {
	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Start != regions[j].Start {
			return regions[i].Start < regions[j].Start
		}
		return regions[i].End < regions[j].End
	})

	// Prefix-max array: maxEnd[i] = max(end) for regions[0..i]
	maxEnd := make([]int64, len(regions))
	for i, r := range regions {
		maxEnd[i] = r.End
		if i > 0 && maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}
	return &regionTree{regions: regions, maxEnd: maxEnd}
}

// RegionsContaining returns all regions on chrom whose [Start, End] range
// contains pos. Results are ordered by descending Start and are identical
// across repeated queries.
func (idx *RegionIndex) RegionsContaining(chrom int, pos int64) []*Region {
	if idx == nil {
		return nil
	}
	t, ok := idx.chroms[chrom]
	if !ok {
		return nil
	}

	// hi is the first index with start > pos; candidates are [0, hi).
	hi := sort.Search(len(t.regions), func(i int) bool {
		return t.regions[i].Start > pos
	})

	var result []*Region
	for i := hi - 1; i >= 0; i-- {
		// No region in [0, i] reaches pos.
		if t.maxEnd[i] < pos {
			break
		}
		if t.regions[i].End >= pos {
			result = append(result, t.regions[i])
		}
	}
	return result
}

// GenesContaining returns the union of gene symbols listed by all regions
// containing pos, in query order with duplicates removed.
func (idx *RegionIndex) GenesContaining(chrom int, pos int64) []string {
	regions := idx.RegionsContaining(chrom, pos)
	if len(regions) == 0 {
		return nil
	}
	seen := make(map[string]bool)
	var genes []string
	for _, r := range regions {
		for _, g := range r.Genes {
			if !seen[g] {
				seen[g] = true
				genes = append(genes, g)
			}
		}
	}
	return genes
}

// Len returns the number of indexed regions.
func (idx *RegionIndex) Len() int {
	if idx == nil {
		return 0
	}
	return idx.size
}

// Chromosomes returns the sorted chromosome identifiers with at least one region.
func (idx *RegionIndex) Chromosomes() []int {
	if idx == nil {
		return nil
	}
	chroms := make([]int, 0, len(idx.chroms))
	for c := range idx.chroms {
		chroms = append(chroms, c)
	}
	sort.Ints(chroms)
	return chroms
}
