package choreography

import (
	"time"

	"github.com/google/uuid"
)

// State is a step of a routine. The kick uses every state from StateIdle
// to StateTerminal; the walk reuses the wake-up states plus its own.
type State int

const (
	StateIdle State = iota
	StateWakingUp
	StateStanding
	StateBalancingEnabled
	StateLegFixedRightSupport
	StateRightLegFree
	StateRightLegMoving
	StateOptimizationDisabled
	StateLegFixedLeftTransfer
	StateLeftLegFree
	StateLeftLegMoving
	StateSettling
	StateBalancingDisabled
	StateRestPosture
	StateResting
	StateTerminal
	StateMoveInit
	StateWalking
)

var stateNames = [...]string{
	StateIdle:                 "idle",
	StateWakingUp:             "waking_up",
	StateStanding:             "standing",
	StateBalancingEnabled:     "balancing_enabled",
	StateLegFixedRightSupport: "leg_fixed_right_support",
	StateRightLegFree:         "right_leg_free",
	StateRightLegMoving:       "right_leg_moving",
	StateOptimizationDisabled: "optimization_disabled",
	StateLegFixedLeftTransfer: "leg_fixed_left_transfer",
	StateLeftLegFree:          "left_leg_free",
	StateLeftLegMoving:        "left_leg_moving",
	StateSettling:             "settling",
	StateBalancingDisabled:    "balancing_disabled",
	StateRestPosture:          "rest_posture",
	StateResting:              "resting",
	StateTerminal:             "terminal",
	StateMoveInit:             "move_init",
	StateWalking:              "walking",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Transition is emitted each time the engine changes state.
type Transition struct {
	RunID uuid.UUID `json:"run_id"`
	From  State     `json:"from"`
	To    State     `json:"to"`
	At    time.Time `json:"at"`
	// Err is set on the abort edge into StateTerminal.
	Err string `json:"error,omitempty"`
}

// Observer receives transitions. It is called synchronously from the
// engine goroutine and must not block.
type Observer func(Transition)
