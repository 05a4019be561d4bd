// Package diff aligns many-to-many relation lists of two schema snapshots so a
// positional differ reports only real additions, removals and renames.
package diff

import (
	"fmt"
	"slices"

	"schemaddl/internal/core"
)

// Rule identifies which alignment rule produced an Alignment.
type Rule uint8

const (
	RuleNone Rule = iota
	// RuleBothSingleton: both lists hold one relation, nothing to align.
	RuleBothSingleton
	// RuleSingletonMatch: one list holds one relation; its match in the other
	// list, by through and then by name, is moved to the front.
	RuleSingletonMatch
	// RuleSameThroughOrder: through sequences are identical.
	RuleSameThroughOrder
	// RuleThroughReordered: same through values in another order; new follows old.
	RuleThroughReordered
	// RuleSameNameOrder: name sequences are identical.
	RuleSameNameOrder
	// RuleNameReordered: same names in another order; new follows old.
	RuleNameReordered
	// RulePartialOverlap: some through values are shared; they lead both lists.
	RulePartialOverlap
	// RuleNoMatch: nothing in common, lists are left as they are.
	RuleNoMatch
)

var ruleNames = [...]string{
	RuleNone:             "none",
	RuleBothSingleton:    "both_singleton",
	RuleSingletonMatch:   "singleton_match",
	RuleSameThroughOrder: "same_through_order",
	RuleThroughReordered: "through_reordered",
	RuleSameNameOrder:    "same_name_order",
	RuleNameReordered:    "name_reordered",
	RulePartialOverlap:   "partial_overlap",
	RuleNoMatch:          "no_match",
}

func (r Rule) String() string {
	if int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return fmt.Sprintf("rule(%d)", uint8(r))
}

// Alignment holds the reordered lists and the rule that produced them.
type Alignment struct {
	Old  []*core.M2MRelation `json:"old"`
	New  []*core.M2MRelation `json:"new"`
	Rule Rule                `json:"-"`
}

// Changed reports whether either list was reordered relative to the inputs.
func (a Alignment) Changed(oldRelations, newRelations []*core.M2MRelation) bool {
	return !slices.Equal(a.Old, oldRelations) || !slices.Equal(a.New, newRelations)
}

// ReorderM2M returns reordered copies of oldRelations and newRelations.
func ReorderM2M(oldRelations, newRelations []*core.M2MRelation) ([]*core.M2MRelation, []*core.M2MRelation) {
	a := AlignM2M(oldRelations, newRelations)
	return a.Old, a.New
}

// AlignM2M reorders copies of both lists to maximize positional
// correspondence. Rules are tried in order and the first that applies wins.
// The outputs are permutations of the inputs, which are never modified.
func AlignM2M(oldRelations, newRelations []*core.M2MRelation) Alignment {
	a := Alignment{
		Old: slices.Clone(oldRelations),
		New: slices.Clone(newRelations),
	}

	switch {
	case len(a.Old) == 1 && len(a.New) == 1:
		a.Rule = RuleBothSingleton
		return a
	case len(a.Old) == 1:
		a.Rule = RuleSingletonMatch
		a.New = pickMatchToHead(a.New, a.Old[0])
		return a
	case len(a.New) == 1:
		a.Rule = RuleSingletonMatch
		a.Old = pickMatchToHead(a.Old, a.New[0])
		return a
	}

	oldThrough, newThrough := keys(a.Old, throughKey), keys(a.New, throughKey)
	oldNames, newNames := keys(a.Old, nameKey), keys(a.New, nameKey)

	switch {
	case slices.Equal(oldThrough, newThrough):
		a.Rule = RuleSameThroughOrder
	case sameMultiset(oldThrough, newThrough):
		a.Rule = RuleThroughReordered
		sortByRank(a.New, throughKey, firstIndex(oldThrough))
	case slices.Equal(oldNames, newNames):
		a.Rule = RuleSameNameOrder
	case sameMultiset(oldNames, newNames):
		a.Rule = RuleNameReordered
		sortByRank(a.New, nameKey, firstIndex(oldNames))
	default:
		shared := sharedInOrder(oldThrough, newThrough)
		if len(shared) == 0 {
			a.Rule = RuleNoMatch
			return a
		}
		a.Rule = RulePartialOverlap
		a.Old = alignToPrefix(a.Old, oldThrough, shared)
		a.New = alignToPrefix(a.New, newThrough, shared)
	}
	return a
}

func throughKey(r *core.M2MRelation) string {
	if r == nil {
		return ""
	}
	return r.Through
}

func nameKey(r *core.M2MRelation) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func keys(rels []*core.M2MRelation, key func(*core.M2MRelation) string) []string {
	out := make([]string, len(rels))
	for i, r := range rels {
		out[i] = key(r)
	}
	return out
}

// pickMatchToHead moves the first relation sharing target's through, or
// failing that its name, to the front. Everything else keeps its order.
func pickMatchToHead(rels []*core.M2MRelation, target *core.M2MRelation) []*core.M2MRelation {
	idx := slices.IndexFunc(rels, func(r *core.M2MRelation) bool {
		return throughKey(r) == throughKey(target)
	})
	if idx < 0 {
		idx = slices.IndexFunc(rels, func(r *core.M2MRelation) bool {
			return nameKey(r) == nameKey(target)
		})
	}
	if idx <= 0 {
		return rels
	}
	out := make([]*core.M2MRelation, 0, len(rels))
	out = append(out, rels[idx])
	out = append(out, rels[:idx]...)
	return append(out, rels[idx+1:]...)
}

func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := slices.Clone(a), slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}

// firstIndex maps every value to the position of its first occurrence.
func firstIndex(values []string) map[string]int {
	rank := make(map[string]int, len(values))
	for i, v := range values {
		if _, ok := rank[v]; !ok {
			rank[v] = i
		}
	}
	return rank
}

// sortByRank stably sorts rels in place by the rank of their key. Keys
// without a rank go last.
func sortByRank(rels []*core.M2MRelation, key func(*core.M2MRelation) string, rank map[string]int) {
	pos := func(r *core.M2MRelation) int {
		if p, ok := rank[key(r)]; ok {
			return p
		}
		return len(rank)
	}
	slices.SortStableFunc(rels, func(a, b *core.M2MRelation) int {
		return pos(a) - pos(b)
	})
}

// sharedInOrder returns the distinct values present in both lists, ordered by
// their first appearance in oldValues.
func sharedInOrder(oldValues, newValues []string) []string {
	inNew := make(map[string]struct{}, len(newValues))
	for _, v := range newValues {
		inNew[v] = struct{}{}
	}
	var shared []string
	seen := make(map[string]struct{})
	for _, v := range oldValues {
		if _, ok := inNew[v]; !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		shared = append(shared, v)
	}
	return shared
}

// alignToPrefix orders rels so the shared through values come first, in the
// given order, followed by the remaining relations in their original order.
// The list is only reordered when that order differs from the current one.
func alignToPrefix(rels []*core.M2MRelation, current, shared []string) []*core.M2MRelation {
	rank := make(map[string]int, len(current))
	for i, v := range shared {
		rank[v] = i
	}
	ordered := slices.Clone(shared)
	for _, v := range current {
		if _, ok := rank[v]; ok {
			continue
		}
		rank[v] = len(ordered)
		ordered = append(ordered, v)
	}

	if slices.Equal(ordered, distinct(current)) {
		return rels
	}
	sortByRank(rels, throughKey, rank)
	return rels
}

func distinct(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
