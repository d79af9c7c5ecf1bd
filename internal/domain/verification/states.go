package verification

// State is the lifecycle position of an access request as seen by the
// orchestrator.
type State int

const (
	StateCreated State = iota
	StateChallenged
	StateVerified
	StateDenied
	StateExpired
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "CREATED"
	case StateChallenged:
		return "CHALLENGED"
	case StateVerified:
		return "VERIFIED"
	case StateDenied:
		return "DENIED"
	case StateExpired:
		return "EXPIRED"
	case StateInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateVerified || s == StateDenied || s == StateExpired || s == StateInvalid
}

type OutcomeKind int

const (
	OutcomeChallenged OutcomeKind = iota
	OutcomeVerified
	OutcomeDenied
	OutcomeExpired
	OutcomeAlreadyUsed
	OutcomeInvalid
	OutcomeIncorrect
	OutcomeInfrastructureError
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeChallenged:          "challenged",
	OutcomeVerified:            "verified",
	OutcomeDenied:              "denied",
	OutcomeExpired:             "expired",
	OutcomeAlreadyUsed:         "already_used",
	OutcomeInvalid:             "invalid",
	OutcomeIncorrect:           "incorrect",
	OutcomeInfrastructureError: "infrastructure_error",
}

func (k OutcomeKind) String() string {
	if name, ok := outcomeNames[k]; ok {
		return name
	}
	return "unknown"
}

// State maps an outcome onto the request state it leaves behind. An incorrect
// answer or an infrastructure failure keeps the request challenged so the
// requester can try again.
func (k OutcomeKind) State() State {
	switch k {
	case OutcomeVerified:
		return StateVerified
	case OutcomeDenied:
		return StateDenied
	case OutcomeExpired, OutcomeAlreadyUsed:
		return StateExpired
	case OutcomeInvalid:
		return StateInvalid
	default:
		return StateChallenged
	}
}
