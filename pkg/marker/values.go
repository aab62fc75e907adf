package marker

// Phase is the coarse run state posted under PhaseKey.
type Phase = string

const (
	PhaseUnknown  Phase = "unknown"
	PhaseStarting Phase = "starting"
	PhaseRunning  Phase = "running"
	PhaseDone     Phase = "done"
	PhaseError    Phase = "error"
)

// AgentType names the two agent flavors under AgentTypeLabel.
type AgentType = string

const (
	AgentTypeTest     AgentType = "test"
	AgentTypeResource AgentType = "resource"
)

var (
	// DefaultNamespace is where run objects live unless bootstrap says
	// otherwise.
	DefaultNamespace = "testsys"
)
