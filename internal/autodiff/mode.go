package autodiff

// Mode is the training/evaluation flag read by mode-sensitive operations
// (dropout). It is carried per Graph rather than as process state, so
// independent execution contexts can run in different modes.
type Mode int

const (
	// Evaluation disables train-time stochastic behavior. The default.
	Evaluation Mode = iota
	// Training enables train-time behavior in mode-sensitive operations.
	Training
)

// String returns a human-readable mode name.
func (m Mode) String() string {
	switch m {
	case Evaluation:
		return "evaluation"
	case Training:
		return "training"
	default:
		return "unknown"
	}
}
