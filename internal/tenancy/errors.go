// Package tenancy carries the tenant access control core: the error taxonomy
// shared by the middleware chain, active-client resolution, and the
// client-association reconciliation used by user administration.
package tenancy

import "errors"

var (
	// ErrProfileNotFound means an authenticated user has no profile row.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrInsufficientRole means the caller's role is outside the
	// operation's allow-list.
	ErrInsufficientRole = errors.New("insufficient permissions")

	// ErrClientAssociationMissing means a client-role profile has no
	// client id. This is a provisioning defect, not a user error, and is
	// logged and counted separately from ordinary permission failures.
	ErrClientAssociationMissing = errors.New("client association missing")

	// ErrActiveClientRequired means an employee or admin request arrived
	// without an active-client override.
	ErrActiveClientRequired = errors.New("active client context required")

	// ErrNotAssociated means the requested active client is not in the
	// caller's association set.
	ErrNotAssociated = errors.New("not associated with client")

	// ErrPrimaryNotMember means the requested primary client is not part
	// of the desired association set.
	ErrPrimaryNotMember = errors.New("primary client not in desired set")
)
