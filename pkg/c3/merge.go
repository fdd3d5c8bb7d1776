package c3

// frame is a suspended traversal step: the node being linearized, its
// parents, the linearizations of parents[:next] and the next parent to visit.
type frame[N comparable] struct {
	node    N
	parents []N
	done    [][]N
	next    int
}

// linearizer holds the per-call caches. It is never reused across calls.
type linearizer[N comparable] struct {
	src     ParentSource[N]
	fetched map[N][]N
	merged  map[N][]N
	active  map[N]int // node -> depth on the frame stack
}

// Merge returns the C3 linearization of root: root first, followed by every
// ancestor exactly once, honoring local precedence and monotonicity.
//
// Parents are fetched at most once per node and each node is linearized at
// most once per call, however many paths reach it. On failure the returned
// slice is nil and the error is a [ConfigError], [InconsistentError] or
// [CycleError].
func Merge[N comparable](root N, src ParentSource[N]) ([]N, error) {
	l := &linearizer[N]{
		src:     src,
		fetched: make(map[N][]N),
		merged:  make(map[N][]N),
		active:  make(map[N]int),
	}
	return l.run(root)
}

// MergeFunc is [Merge] with a plain parent function.
func MergeFunc[N comparable](root N, parents func(N) []N) ([]N, error) {
	return Merge[N](root, ParentFunc[N](parents))
}

func (l *linearizer[N]) fetch(n N) ([]N, error) {
	if ps, ok := l.fetched[n]; ok {
		return ps, nil
	}
	fn, ok := l.src.Resolve(n)
	if !ok {
		return nil, &ConfigError[N]{Node: n}
	}
	ps := fn(n)
	l.fetched[n] = ps
	return ps, nil
}

func (l *linearizer[N]) run(root N) ([]N, error) {
	parents, err := l.fetch(root)
	if err != nil {
		return nil, err
	}

	var stack []*frame[N]
	cur := &frame[N]{node: root, parents: parents}
	l.active[root] = 0

	for {
		if cur.next < len(cur.parents) {
			p := cur.parents[cur.next]
			if lin, ok := l.merged[p]; ok {
				cur.done = append(cur.done, lin)
				cur.next++
				continue
			}
			if depth, ok := l.active[p]; ok {
				return nil, l.cycle(p, depth, stack, cur)
			}
			ps, err := l.fetch(p)
			if err != nil {
				return nil, err
			}
			stack = append(stack, cur)
			l.active[p] = len(stack)
			cur = &frame[N]{node: p, parents: ps}
			continue
		}

		lin, err := mergeSeqs(cur.node, cur.done, cur.parents)
		if err != nil {
			return nil, err
		}
		l.merged[cur.node] = lin
		delete(l.active, cur.node)

		if len(stack) == 0 {
			return lin, nil
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur.done = append(cur.done, lin)
		cur.next++
	}
}

// cycle builds the error for a descent from cur into p, where p already sits
// at the given depth of the frame stack.
func (l *linearizer[N]) cycle(p N, depth int, stack []*frame[N], cur *frame[N]) error {
	path := make([]N, 0, len(stack)-depth+2)
	for _, f := range stack[depth:] {
		path = append(path, f.node)
	}
	path = append(path, cur.node, p)
	return &CycleError[N]{Node: p, Path: path}
}

// mergeSeqs runs the C3 merge of the parent linearizations followed by the
// parent list itself, in that priority order, and prepends root.
func mergeSeqs[N comparable](root N, lins [][]N, parents []N) ([]N, error) {
	seqs := make([][]N, 0, len(lins)+1)
	size := 1
	for _, lin := range lins {
		if len(lin) > 0 {
			seqs = append(seqs, lin)
			size += len(lin)
		}
	}
	if len(parents) > 0 {
		seqs = append(seqs, parents)
	}

	tails := make(map[N]int)
	for _, s := range seqs {
		for _, n := range s[1:] {
			tails[n]++
		}
	}

	out := make([]N, 1, size)
	out[0] = root

	for {
		var (
			cand      N
			winner    N
			found     bool
			remaining bool
		)
		for i, s := range seqs {
			if len(s) == 0 {
				continue
			}
			if !found {
				cand = s[0]
				remaining = true
				if tails[cand] > 0 {
					continue
				}
				winner, found = cand, true
				out = append(out, winner)
			} else if s[0] != winner {
				continue
			}
			s = s[1:]
			if len(s) > 0 {
				tails[s[0]]--
			}
			seqs[i] = s
		}
		if !remaining {
			return out, nil
		}
		if !found {
			return nil, &InconsistentError[N]{Root: root, Partial: out, Blocked: cand}
		}
	}
}
