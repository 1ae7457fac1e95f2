package network

import "sort"

// TopoSort orders the nodes implied by edges so that every edge's source
// precedes its target — spec.md §4.6's "the graph is topologically
// sorted after load" for the author DAG. Kahn's algorithm, since no
// graph/toposort library appears anywhere in the reference corpus; ties
// among simultaneously-ready nodes are broken lexicographically so the
// result is deterministic across runs over the same edge set.
func TopoSort(edges []Edge) ([]string, error) {
	nodes := map[string]bool{}
	inDegree := map[string]int{}
	adjacency := map[string][]string{}

	for _, e := range edges {
		nodes[e.Source] = true
		nodes[e.Target] = true
		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
		inDegree[e.Target]++
	}

	var ready []string
	for n := range nodes {
		if inDegree[n] == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	var order []string
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)

		neighbors := append([]string(nil), adjacency[n]...)
		sort.Strings(neighbors)
		var newlyReady []string
		for _, m := range neighbors {
			inDegree[m]--
			if inDegree[m] == 0 {
				newlyReady = append(newlyReady, m)
			}
		}
		if len(newlyReady) > 0 {
			ready = append(ready, newlyReady...)
			sort.Strings(ready)
		}
	}

	if len(order) != len(nodes) {
		return nil, errCycle
	}
	return order, nil
}

var errCycle = cycleError{}

type cycleError struct{}

func (cycleError) Error() string { return "network: author DAG contains a cycle" }
