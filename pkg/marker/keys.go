package marker

type Key = string

const (
	// Prefix is the common base for the test system's annotations and labels.
	Prefix = "testsys.bottlerocket.aws"

	// AgentNameLabel identifies the objects belonging to a named agent run.
	AgentNameLabel Key = Prefix + "/agent"
	// AgentTypeLabel distinguishes test agents from resource agents on the
	// objects they own.
	AgentTypeLabel Key = Prefix + "/agent-type"

	// PhaseKey mirrors the run's coarse phase so that progress shows up in
	// object listings without decoding the memo.
	PhaseKey Key = Prefix + "/phase"
	// ActionKey records the verb a resource agent run was scheduled with.
	ActionKey Key = Prefix + "/action"
	// ResourcesKey carries the cleanup classification of a failed
	// provisioning run for sweepers to read.
	ResourcesKey Key = Prefix + "/resources"
	// LastCheckpointKey records the wall clock time of the most recent memo
	// write for staleness checks by sweepers.
	LastCheckpointKey Key = Prefix + "/last-checkpoint"
)

// Data entry names inside a run's ConfigMap. The control plane writes the
// spec entry once before the agent starts; the agent owns the rest.
const (
	// DataSpec holds the JSON encoded run spec delivered by the control plane.
	DataSpec = "spec"
	// DataMemo holds the agent's durable progress memo.
	DataMemo = "memo"
	// DataResults holds the final test results, written at most once.
	DataResults = "results"
	// DataResource holds the created resource description, written at most
	// once.
	DataResource = "resource"
	// DataError holds the terminal error text for a failed run.
	DataError = "error"
)
