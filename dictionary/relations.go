package dictionary

// Relation is a derived parent link between two positions, valid over the
// intersection of the matching CODE / PARENT_CODE windows. Relations are
// owned by the hierarchy rebuild; they are never patched in place.
type Relation struct {
	PositionID       int64
	ParentPositionID int64
	Interval         Interval
}

// CodePeriod is a candidate parent: one CODE period of some position in the
// same dictionary.
type CodePeriod struct {
	PositionID int64
	Value      *string
	Interval   Interval
}

// MatchRelations derives the relation set for one position from its
// PARENT_CODE timeline and the CODE periods of the dictionary. A candidate
// matches when the code values are equal and the windows overlap strictly
// (touching endpoints do not count); the relation covers the intersection.
//
// A position may end up with zero, one, or several concurrent parents, and
// may reference itself when CODE equals PARENT_CODE. Cycles are not detected
// here; consumers building trees must guard their own traversal.
func MatchRelations(positionID int64, parentCodes []Period, candidates []CodePeriod) []Relation {
	var relations []Relation

	for _, pc := range parentCodes {
		if pc.Value == nil {
			continue
		}

		for _, cand := range candidates {
			if cand.Value == nil || *cand.Value != *pc.Value {
				continue
			}

			if !pc.Interval.OverlapsStrictly(cand.Interval) {
				continue
			}

			relations = append(relations, Relation{
				PositionID:       positionID,
				ParentPositionID: cand.PositionID,
				Interval:         pc.Interval.Intersect(cand.Interval),
			})
		}
	}

	return relations
}
