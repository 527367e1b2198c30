package probe

import "github.com/sarchlab/meshprobe/mesh"

// ProbesPerRank returns the block size used to distribute probes over
// ranks. When there are more ranks than probes the block size is one.
func ProbesPerRank(numProbes, numRanks int) int {
	if numRanks > numProbes {
		return 1
	}

	return numProbes / numRanks
}

// OwningRank maps probe index i to the rank that owns it. The mapping is a
// block partition: probes are assigned in contiguous blocks of
// ProbesPerRank, and trailing probes left over by an uneven division fold
// into the last rank. The result is always in [0, numRanks) and is
// non-decreasing in i.
//
// A probe's nodes all live on its owning rank, so sampling never needs
// communication. Exact load balance is secondary to that.
func OwningRank(i, numProbes, numRanks int) mesh.Rank {
	perRank := ProbesPerRank(numProbes, numRanks)

	rank := (i+perRank)/perRank - 1
	if rank > numRanks-1 {
		rank = numRanks - 1
	}

	return mesh.Rank(rank)
}
