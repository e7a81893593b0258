package history

import "time"

// Aux is data-history's static sampling configuration (spec.md §4.7): a
// sample is taken "by either the target-characteristic's setter or a
// periodic timer". TargetService/TargetChar name the monitored
// characteristic (0 = unset); Period, when nonzero, arms the periodic
// alternative in addition to the setter-triggered path.
type Aux struct {
	TargetService int
	TargetChar    int
	Period        time.Duration
}
