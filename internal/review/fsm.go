// internal/review/fsm.go
package review

// State is the single mode the review workflow is in. Exactly one state is
// active at a time, which is what rules out two sub-modals showing at once.
type State string

const (
	StateClosed           State = "closed"
	StateViewing          State = "viewing"
	StateApproveConfirm   State = "approve_confirm"
	StateRejectComment    State = "reject_comment"
	StateEnableEditPrompt State = "enable_edit_prompt"
)

// transitions is the full table of legal state changes. Close is legal from
// everywhere and is handled separately.
var transitions = map[State][]State{
	StateClosed:           {StateViewing},
	StateViewing:          {StateApproveConfirm, StateRejectComment},
	StateApproveConfirm:   {StateViewing},
	StateRejectComment:    {StateViewing, StateEnableEditPrompt},
	StateEnableEditPrompt: {StateViewing},
}

func canTransition(from, to State) bool {
	if to == StateClosed {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
