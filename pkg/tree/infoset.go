package tree

import (
	"sort"

	"github.com/behrlich/qre-solver/pkg/action"
)

// InfoSet identifies a decision-theoretic situation shared by every player
// node with the same id: the same acting player, the same player-visible
// history, and the same private information.
type InfoSet struct {
	ID      string
	Player  int
	Actions []action.Action
}

// GetInfoSets walks the tree and returns the unique InfoSets it contains,
// sorted by id for deterministic ordering.
func GetInfoSets(root *TreeNode) []InfoSet {
	seen := make(map[string]InfoSet)
	Walk(root, func(n *TreeNode) {
		if n.Kind != Player {
			return
		}
		if _, ok := seen[n.InfoSetID]; !ok {
			seen[n.InfoSetID] = InfoSet{ID: n.InfoSetID, Player: n.ActingPlayer, Actions: n.Actions}
		}
	})

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make([]InfoSet, len(ids))
	for i, id := range ids {
		result[i] = seen[id]
	}
	return result
}

// InfoSetIndex is the immutable flat coordinate layout over a fixed list
// of info sets: for info set i with k_i actions, its block occupies
// contiguous flat coordinates [start_i, start_i+k_i). Built once per game; never mutated thereafter.
type InfoSetIndex struct {
	infoSets []InfoSet
	idToIdx  map[string]int
	starts   []int
	totalDim int
}

// NewInfoSetIndex builds an index over infoSets, which should already be
// in deterministic order (e.g. from GetInfoSets).
func NewInfoSetIndex(infoSets []InfoSet) *InfoSetIndex {
	idx := &InfoSetIndex{
		infoSets: infoSets,
		idToIdx:  make(map[string]int, len(infoSets)),
		starts:   make([]int, len(infoSets)),
	}

	flat := 0
	for i, is := range infoSets {
		idx.idToIdx[is.ID] = i
		idx.starts[i] = flat
		flat += len(is.Actions)
	}
	idx.totalDim = flat

	return idx
}

// TotalDim returns D = sum of k_i over all info sets.
func (idx *InfoSetIndex) TotalDim() int { return idx.totalDim }

// NumInfoSets returns the number of info sets in the index.
func (idx *InfoSetIndex) NumInfoSets() int { return len(idx.infoSets) }

// InfoSetAt returns the i-th info set in index order.
func (idx *InfoSetIndex) InfoSetAt(i int) InfoSet { return idx.infoSets[i] }

// IndexOf returns the position of id in index order, or -1 if unknown.
func (idx *InfoSetIndex) IndexOf(id string) int {
	i, ok := idx.idToIdx[id]
	if !ok {
		return -1
	}
	return i
}

// Start returns the flat coordinate where info set i's block begins.
func (idx *InfoSetIndex) Start(i int) int { return idx.starts[i] }

// Flat returns the flat coordinate for (id, actionIdx), or -1 if id is
// unknown.
func (idx *InfoSetIndex) Flat(id string, actionIdx int) int {
	i, ok := idx.idToIdx[id]
	if !ok {
		return -1
	}
	return idx.starts[i] + actionIdx
}
