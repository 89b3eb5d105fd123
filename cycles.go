package pkggraph

// detectPackageCycle and detectModuleCycle implement the two cycle
// domains of spec.md §4.4: the package-dependency multigraph and the
// module-dependency graph. Both walk edges in declaration order so that
// cycle paths are reproducible, per spec.md's determinism requirement.
//
// detectPackageCycle runs a depth-first search over the package-dependency
// graph, returning the first back-edge path found (declaration order), or
// nil if the graph is acyclic. edgesOf must return a package's declared
// dependency identities in manifest declaration order.
func detectPackageCycle(roots []Identity, edgesOf func(Identity) []Identity) []Identity {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int)
	var stack []Identity

	var visit func(id Identity) []Identity
	visit = func(id Identity) []Identity {
		state[id.String()] = visiting
		stack = append(stack, id)

		for _, next := range edgesOf(id) {
			switch state[next.String()] {
			case unvisited:
				if cyc := visit(next); cyc != nil {
					return cyc
				}
			case visiting:
				// Found a back-edge: build the cycle path from the first
				// occurrence of `next` in the stack.
				for i, s := range stack {
					if s.Equal(next) {
						path := append(append([]Identity{}, stack[i:]...), next)
						return path
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[id.String()] = done
		return nil
	}

	for _, root := range roots {
		if state[root.String()] == unvisited {
			if cyc := visit(root); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}

// detectModuleCycle is the module-graph analogue: nodes are resolved
// module names, edges are resolved module-to-module bindings only (not
// module-to-product edges, per spec.md §4.4).
func detectModuleCycle(modules []string, edgesOf func(string) []string) []string {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(modules))
	var stack []string

	var visit func(name string) []string
	visit = func(name string) []string {
		state[name] = visiting
		stack = append(stack, name)

		for _, next := range edgesOf(name) {
			switch state[next] {
			case unvisited:
				if cyc := visit(next); cyc != nil {
					return cyc
				}
			case visiting:
				for i, s := range stack {
					if s == next {
						path := append(append([]string{}, stack[i:]...), next)
						return path
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	for _, m := range modules {
		if state[m] == unvisited {
			if cyc := visit(m); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}
