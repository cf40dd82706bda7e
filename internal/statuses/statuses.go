package statuses

// Match lifecycle statuses. Transitions are owned by the match usecase.
const (
	StatusWaiting   = "waiting"
	StatusActive    = "active"
	StatusScoring   = "scoring"
	StatusFinished  = "finished"
	StatusAbandoned = "abandoned"
)
