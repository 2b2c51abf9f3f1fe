package integration

// Walk traverses a tree depth first, pre-order, starting at roots (depth 1).
// visit receives the node, its depth and the accumulator built by its
// ancestors, and returns the accumulator for the node's children; returning
// descend == false skips the subtree. Nodes deeper than maxDepth are not
// visited. The first error returned by visit stops the traversal.
func Walk[N any, A any](
	roots []N,
	children func(N) []N,
	maxDepth int,
	acc A,
	visit func(node N, depth int, acc A) (next A, descend bool, err error),
) error {
	return walk(roots, children, 1, maxDepth, acc, visit)
}

func walk[N any, A any](
	nodes []N,
	children func(N) []N,
	depth, maxDepth int,
	acc A,
	visit func(N, int, A) (A, bool, error),
) error {
	if depth > maxDepth {
		return nil
	}
	for _, node := range nodes {
		next, descend, err := visit(node, depth, acc)
		if err != nil {
			return err
		}
		if !descend {
			continue
		}
		if err := walk(children(node), children, depth+1, maxDepth, next, visit); err != nil {
			return err
		}
	}
	return nil
}
