package provider

// Memo is the durable progress base every provider memo embeds. Providers
// add their own typed fields (allocated identifiers, recorded policy and
// credential references) next to these. Memos are monotonic: a field, once
// set, is superseded but never unset.
type Memo struct {
	// CurrentStatus is the human readable phase label shown to operators.
	CurrentStatus string `json:"currentStatus,omitempty"`
	// ProvisioningStarted is the durability marker. Once checkpointed, every
	// later process must assume partial external resources exist, whatever
	// became of the create call itself.
	ProvisioningStarted bool `json:"provisioningStarted,omitempty"`
}

// CreateFailureResources is the single rule for classifying create path
// failures: remaining once the marker is set, clear before it. Destroy call
// failures use ResourcesOrphaned and unreadable memo state uses
// ResourcesUnknown; call sites never choose ad hoc.
func (m Memo) CreateFailureResources() Resources {
	if m.ProvisioningStarted {
		return ResourcesRemaining
	}
	return ResourcesClear
}
