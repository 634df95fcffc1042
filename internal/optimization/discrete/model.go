package discrete

import (
	"math"
	"math/rand"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/copyleftdev/SCREE/internal/optimization"
)

// nodeModel is a dependency-tree probability model over the state variables.
// Node 0 is the root; every other node is conditioned on exactly one parent
// chosen to maximize pairwise mutual information over the fitting sample.
// The sampling order lists ancestors before descendants.
type nodeModel struct {
	length  int
	maxVal  int
	parents []int // parents[i] is the parent of node i, -1 for the root
	order   []int
	// probs[i] is a maxVal x maxVal table; row j holds P(node i = k | parent = j).
	// For the root only row 0 is populated, with the marginal distribution.
	probs []*mat.Dense
}

// estimateModel fits a dependency tree to the sample: pairwise mutual
// information between variables, a maximum mutual-information spanning tree
// rooted at node 0, and one conditional probability table per node. Parent
// values never seen in the sample fall back to a uniform distribution.
func estimateModel(sample []optimization.State, length, maxVal int, logger *zap.Logger) *nodeModel {
	info := mutualInfoMatrix(sample, length, maxVal)
	parents := spanningTree(info, length)
	order := samplingOrder(parents, length)

	m := &nodeModel{
		length:  length,
		maxVal:  maxVal,
		parents: parents,
		order:   order,
		probs:   make([]*mat.Dense, length),
	}

	for node := 0; node < length; node++ {
		m.probs[node] = mat.NewDense(maxVal, maxVal, nil)
		if parents[node] < 0 {
			m.fitMarginal(node, sample)
		} else {
			m.fitConditional(node, sample)
		}
	}

	logger.Debug("refit dependency-tree model",
		zap.Int("sample_size", len(sample)),
		zap.Int("variables", length),
		zap.Int("cardinality", maxVal))

	return m
}

// sample draws n states from the model, each node conditioned on its
// parent's already-sampled value.
func (m *nodeModel) sample(n int, rng *rand.Rand) []optimization.State {
	out := make([]optimization.State, n)
	for i := range out {
		s := make(optimization.State, m.length)
		for _, node := range m.order {
			row := 0
			if par := m.parents[node]; par >= 0 {
				row = int(s[par])
			}
			s[node] = float64(drawCategorical(m.probs[node].RawRowView(row), rng))
		}
		out[i] = s
	}
	return out
}

func (m *nodeModel) fitMarginal(node int, sample []optimization.State) {
	row := m.probs[node].RawRowView(0)
	for _, s := range sample {
		row[int(s[node])]++
	}
	floats.Scale(1/float64(len(sample)), row)
}

func (m *nodeModel) fitConditional(node int, sample []optimization.State) {
	parent := m.parents[node]

	for parVal := 0; parVal < m.maxVal; parVal++ {
		row := m.probs[node].RawRowView(parVal)
		total := 0.0
		for _, s := range sample {
			if int(s[parent]) != parVal {
				continue
			}
			row[int(s[node])]++
			total++
		}

		if total == 0 {
			// Parent value unseen in the sample: uniform fallback.
			for k := range row {
				row[k] = 1 / float64(m.maxVal)
			}
		} else {
			floats.Scale(1/total, row)
		}
	}
}

// mutualInfoMatrix computes pairwise mutual information between every pair
// of state variables over the sample.
func mutualInfoMatrix(sample []optimization.State, length, maxVal int) *mat.SymDense {
	info := mat.NewSymDense(length, nil)
	for i := 0; i < length-1; i++ {
		for j := i + 1; j < length; j++ {
			info.SetSym(i, j, mutualInfo(sample, i, j, maxVal))
		}
	}
	return info
}

func mutualInfo(sample []optimization.State, i, j, maxVal int) float64 {
	joint := mat.NewDense(maxVal, maxVal, nil)
	px := make([]float64, maxVal)
	py := make([]float64, maxVal)

	n := float64(len(sample))
	for _, s := range sample {
		a, b := int(s[i]), int(s[j])
		joint.Set(a, b, joint.At(a, b)+1)
		px[a]++
		py[b]++
	}

	mi := 0.0
	for a := 0; a < maxVal; a++ {
		for b := 0; b < maxVal; b++ {
			pab := joint.At(a, b) / n
			if pab == 0 {
				continue
			}
			mi += pab * math.Log(pab*n*n/(px[a]*py[b]))
		}
	}
	return mi
}

// spanningTree runs Prim's algorithm from node 0 over the mutual-information
// matrix, attaching each node to the already-connected node it shares the
// most information with.
func spanningTree(info *mat.SymDense, length int) []int {
	parents := make([]int, length)
	parents[0] = -1

	inTree := make([]bool, length)
	inTree[0] = true

	bestEdge := make([]float64, length)
	for i := 1; i < length; i++ {
		bestEdge[i] = info.At(0, i)
		parents[i] = 0
	}

	for added := 1; added < length; added++ {
		next := -1
		for i := 1; i < length; i++ {
			if inTree[i] {
				continue
			}
			if next < 0 || bestEdge[i] > bestEdge[next] {
				next = i
			}
		}
		inTree[next] = true

		for i := 1; i < length; i++ {
			if inTree[i] {
				continue
			}
			if w := info.At(next, i); w > bestEdge[i] {
				bestEdge[i] = w
				parents[i] = next
			}
		}
	}
	return parents
}

// samplingOrder returns a breadth-first ordering of the tree so that every
// node appears after its parent.
func samplingOrder(parents []int, length int) []int {
	children := make([][]int, length)
	root := 0
	for node, par := range parents {
		if par < 0 {
			root = node
			continue
		}
		children[par] = append(children[par], node)
	}

	order := make([]int, 0, length)
	queue := []int{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)
		queue = append(queue, children[node]...)
	}
	return order
}

// drawCategorical samples one index from a discrete distribution by inverse
// transform over the cumulative weights.
func drawCategorical(weights []float64, rng *rand.Rand) int {
	cum := make([]float64, len(weights))
	floats.CumSum(cum, weights)

	u := rng.Float64() * cum[len(cum)-1]
	for i, c := range cum {
		if u < c {
			return i
		}
	}
	return len(weights) - 1
}
