package partitions

import (
	"fmt"
	"math"
)

// PartitionBuilder constructs partitions of a row space
type PartitionBuilder struct {
	// Row space
	Rows *RowConnectivity

	// Partitioning parameters
	NumPartitions       int // Explicit count, takes precedence when > 0
	TargetPartitionSize int // Desired rows per partition
	Strategy            PartitionStrategy
}

// RowConnectivity describes the rows to distribute
type RowConnectivity struct {
	NumRows    int
	RowWeights []int // optional per row cost, the nonzeros of a sparse row
}

// PartitionStrategy defines how rows are grouped
type PartitionStrategy int

const (
	BlockPartition PartitionStrategy = iota // Consecutive rows, equal counts
	RoundRobin                              // Distribute cyclically
	WeightedBlock                           // Consecutive rows, equal weight
)

// BuildPartitions creates a partition layout over the rows
func (pb *PartitionBuilder) BuildPartitions() (*PartitionLayout, error) {
	if pb.Rows == nil || pb.Rows.NumRows <= 0 {
		return nil, fmt.Errorf("no rows to partition")
	}
	if pb.Rows.RowWeights != nil && len(pb.Rows.RowWeights) != pb.Rows.NumRows {
		return nil, fmt.Errorf("have %d row weights for %d rows",
			len(pb.Rows.RowWeights), pb.Rows.NumRows)
	}

	numPartitions := pb.calculateNumPartitions()
	rToP := pb.partitionRows(numPartitions)
	partitions := pb.createPartitions(rToP, numPartitions)

	kpartMax := 0
	for _, p := range partitions {
		if p.NumRows > kpartMax {
			kpartMax = p.NumRows
		}
	}
	for i := range partitions {
		partitions[i].MaxRows = kpartMax
	}

	layout := &PartitionLayout{
		Partitions:    partitions,
		KpartMax:      kpartMax,
		TotalRows:     pb.Rows.NumRows,
		NumPartitions: numPartitions,
		RToP:          rToP,
	}
	if err := layout.ValidateLayout(); err != nil {
		return nil, fmt.Errorf("invalid partition layout: %w", err)
	}
	return layout, nil
}

// calculateNumPartitions determines the partition count, never more than
// the number of rows
func (pb *PartitionBuilder) calculateNumPartitions() int {
	numPartitions := pb.NumPartitions
	if numPartitions <= 0 && pb.TargetPartitionSize > 0 {
		numPartitions = int(math.Ceil(float64(pb.Rows.NumRows) / float64(pb.TargetPartitionSize)))
	}
	if numPartitions < 1 {
		numPartitions = 1
	}
	if numPartitions > pb.Rows.NumRows {
		numPartitions = pb.Rows.NumRows
	}
	return numPartitions
}

func (pb *PartitionBuilder) weight(row int) int {
	if pb.Rows.RowWeights == nil {
		return 1
	}
	return pb.Rows.RowWeights[row]
}

// partitionRows assigns rows to partitions
func (pb *PartitionBuilder) partitionRows(numPartitions int) []int {
	n := pb.Rows.NumRows
	rToP := make([]int, n)

	switch pb.Strategy {
	case RoundRobin:
		for i := 0; i < n; i++ {
			rToP[i] = i % numPartitions
		}

	case WeightedBlock:
		total := 0
		for i := 0; i < n; i++ {
			total += pb.weight(i)
		}
		if total <= 0 {
			return pb.partitionWithStrategy(BlockPartition, numPartitions)
		}
		// Row i goes to the partition its weight midpoint falls in
		cum := 0
		for i := 0; i < n; i++ {
			w := pb.weight(i)
			mid := float64(cum) + 0.5*float64(w)
			p := int(mid * float64(numPartitions) / float64(total))
			if p >= numPartitions {
				p = numPartitions - 1
			}
			rToP[i] = p
			cum += w
		}

	default:
		rowsPerPartition := int(math.Ceil(float64(n) / float64(numPartitions)))
		for i := 0; i < n; i++ {
			rToP[i] = i / rowsPerPartition
			if rToP[i] >= numPartitions {
				rToP[i] = numPartitions - 1
			}
		}
	}
	return rToP
}

// partitionWithStrategy applies a different strategy
func (pb *PartitionBuilder) partitionWithStrategy(strategy PartitionStrategy, numPartitions int) []int {
	oldStrategy := pb.Strategy
	pb.Strategy = strategy
	result := pb.partitionRows(numPartitions)
	pb.Strategy = oldStrategy
	return result
}

// createPartitions builds partition structures from row assignments
func (pb *PartitionBuilder) createPartitions(rToP []int, numPartitions int) []Partition {
	partitions := make([]Partition, numPartitions)
	for i := range partitions {
		partitions[i] = Partition{ID: i, Rows: make([]int, 0)}
	}
	for row, part := range rToP {
		partitions[part].Rows = append(partitions[part].Rows, row)
		partitions[part].NumRows++
		partitions[part].Work += pb.weight(row)
	}
	return partitions
}
