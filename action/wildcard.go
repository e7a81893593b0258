package action

import "haa/model"

// FireWildcard implements spec.md §4.1 fire_wildcard: among wildcard
// entries matching index, selects the one with the greatest threshold
// <= value (ties broken by last-in-list), and dispatches its target
// action if last_wildcard[index] changed, or if the entry is marked
// repeat.
func FireWildcard(reg *model.Registry, svc *model.Service, index int, value float64, h Hooks) {
	var best *model.WildcardAction
	for i := range svc.Wildcards {
		w := &svc.Wildcards[i]
		if w.Index != index || w.Threshold > value {
			continue
		}
		if best == nil || w.Threshold >= best.Threshold {
			best = w
		}
	}
	if best == nil {
		return
	}
	if index >= len(svc.LastWildcard) {
		return
	}
	changed := svc.LastWildcard[index] != best.Threshold
	if !changed && !best.Repeat {
		return
	}
	svc.LastWildcard[index] = best.Threshold
	Dispatch(reg, svc, best.TargetID, h)
}
