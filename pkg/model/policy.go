package model

import "github.com/pkg/errors"

// CreationPolicy declares whether provisioning is expected to create the
// external resource or to find it already in place.
type CreationPolicy string

const (
	// CreationPolicyCreate requires a fresh resource; finding an existing
	// one is an error. This is the default.
	CreationPolicyCreate CreationPolicy = "create"
	// CreationPolicyIfNotExists uses an existing resource when present and
	// creates one otherwise.
	CreationPolicyIfNotExists CreationPolicy = "createIfNotExists"
	// CreationPolicyNever requires the resource to exist already; absence is
	// an error.
	CreationPolicyNever CreationPolicy = "never"
)

// CreationRequired resolves the policy against the observed state of the
// external resource, returning whether a create call is owed. Contradictory
// combinations are errors: the resource exists but the policy demands a new
// one, or the resource is absent and the policy forbids creating it.
func (p CreationPolicy) CreationRequired(exists bool) (bool, error) {
	switch p {
	case CreationPolicyCreate, "":
		if exists {
			return false, errors.Errorf("creation policy %q requires a new resource but one already exists", CreationPolicyCreate)
		}
		return true, nil
	case CreationPolicyIfNotExists:
		return !exists, nil
	case CreationPolicyNever:
		if !exists {
			return false, errors.Errorf("creation policy %q requires an existing resource but none was found", CreationPolicyNever)
		}
		return false, nil
	}
	return false, errors.Errorf("unrecognized creation policy %q", string(p))
}
