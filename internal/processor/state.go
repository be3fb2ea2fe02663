package processor

// State is a step of the ingestion loop
type State int

const (
	StateIdle State = iota
	StateReceiving
	StateEvaluatingWindow
	StateClassifying
	StateReporting
	StatePersisting
	StateConfigRefresh
	StateStopped
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateReceiving:        "receiving",
	StateEvaluatingWindow: "evaluating_window",
	StateClassifying:      "classifying",
	StateReporting:        "reporting",
	StatePersisting:       "persisting",
	StateConfigRefresh:    "config_refresh",
	StateStopped:          "stopped",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
