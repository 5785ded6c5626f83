package naoqi

// Module names served by the proxy bridge.
const (
	ModuleMotion          = "ALMotion"
	ModulePosture         = "ALRobotPosture"
	ModuleBehaviorManager = "ALBehaviorManager"
	ModuleSpeech          = "ALTextToSpeech"
)

// Effector names a limb or chain that a command applies to.
type Effector string

const (
	EffectorLeftLeg  Effector = "LLeg"
	EffectorRightLeg Effector = "RLeg"
	EffectorLegs     Effector = "Legs"
	EffectorTorso    Effector = "Torso"
)

// Frame is the reference frame a transform is expressed in.
type Frame int

const (
	FrameTorso Frame = 0
	FrameWorld Frame = 1
	FrameRobot Frame = 2
)

func (f Frame) String() string {
	switch f {
	case FrameTorso:
		return "torso"
	case FrameWorld:
		return "world"
	case FrameRobot:
		return "robot"
	default:
		return "unknown"
	}
}

// AxisMask selects which degrees of freedom a transform command controls.
type AxisMask int

const (
	AxisX AxisMask = 1 << iota
	AxisY
	AxisZ
	AxisWX
	AxisWY
	AxisWZ

	// AxisMaskAll controls position and orientation (63).
	AxisMaskAll = AxisX | AxisY | AxisZ | AxisWX | AxisWY | AxisWZ
)

// FootState is the whole-body constraint applied to a foot.
type FootState string

const (
	FootFixed FootState = "Fixed"
	FootFree  FootState = "Free"
	FootPlane FootState = "Plane"
)
