package mesh

// Components labels the connected components of the surface formed by the
// faces for which keep returns true (all faces when keep is nil). Labels are
// numbered 0..count-1 in order of the lowest vertex id in each component.
// Vertices touched by no kept face form singleton components.
func Components(acc Accessor, keep func(f int) bool) (labels []int, count int) {
	nv := acc.NumVertices()
	parent := make([]int, nv)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// Smaller root wins so labelling is order independent
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	for f := 0; f < acc.NumFaces(); f++ {
		if keep != nil && !keep(f) {
			continue
		}
		tri := acc.Face(f)
		union(tri[0], tri[1])
		union(tri[1], tri[2])
	}

	labels = make([]int, nv)
	rootLabel := make(map[int]int)
	for i := 0; i < nv; i++ {
		r := find(i)
		l, ok := rootLabel[r]
		if !ok {
			l = count
			rootLabel[r] = l
			count++
		}
		labels[i] = l
	}
	return
}
