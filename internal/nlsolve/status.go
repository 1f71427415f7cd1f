package nlsolve

// Status classifies how a solve ended.
type Status int

const (
	// Success means max |F_i| fell below the tolerance.
	Success Status = iota
	// IterationLimit means MaxIterations Jacobian solves were spent.
	IterationLimit
	// NoProgress means the line search or step length stalled.
	NoProgress
	// SingularJacobian means the linearized system could not be solved.
	SingularJacobian
	// NonFinite means F was NaN or Inf at the starting point.
	NonFinite
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case IterationLimit:
		return "iteration limit"
	case NoProgress:
		return "no progress"
	case SingularJacobian:
		return "singular jacobian"
	case NonFinite:
		return "non-finite residual"
	default:
		return "unknown"
	}
}
