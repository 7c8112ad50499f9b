package domain

// JudgmentState describes the outcome of a judgment step.
type JudgmentState string

const (
	// JudgmentPending means the judgment step has not run yet.
	JudgmentPending JudgmentState = "pending"
	// JudgmentSatisfied means the judge declared the plan achieved.
	JudgmentSatisfied JudgmentState = "satisfied"
	// JudgmentUnsatisfied means the judge requested another revision.
	JudgmentUnsatisfied JudgmentState = "unsatisfied"
	// JudgmentFinalForced means the judge was asked to conclude because no
	// further iteration is permitted, and did not declare satisfaction.
	// Forcing only changes the prompt content; it never flips Satisfied.
	JudgmentFinalForced JudgmentState = "final-forced"
)

// Judgment is the decision produced by the judge for one iteration.
// Directive is always present: a closing summary when Satisfied, otherwise
// the revision instruction fed into the next generation step.
type Judgment struct {
	State     JudgmentState
	Satisfied bool
	Directive string
}
