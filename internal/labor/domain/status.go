// Package domain holds the pure labor-exchange business rules: status
// machines, time-window arithmetic and the labor/activity status bridge.
// Nothing in this package touches storage or the web framework.
package domain

// RequestKind describes how a labor request is settled.
type RequestKind string

const (
	RequestKindExchange RequestKind = "exchange"
	RequestKindPaid     RequestKind = "paid"
	RequestKindMixed    RequestKind = "mixed"
)

// PostsToLedger reports whether completed assignments under this kind of
// request post work units to the pairwise ledger. Paid requests settle in
// cash and never touch the ledger.
func (k RequestKind) PostsToLedger() bool {
	return k == RequestKindExchange || k == RequestKindMixed
}

// RequestStatus is the lifecycle state of a labor request.
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusDeclined  RequestStatus = "declined"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"
)

// IsTerminal reports whether the request can no longer change state.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case RequestStatusCompleted, RequestStatusCancelled, RequestStatusDeclined:
		return true
	}
	return false
}

// AssignmentStatus is the lifecycle state of a labor assignment.
//
// The full five-state lifecycle is authoritative:
//
//	assigned → worker_reported → completed
//	assigned → missed
//	assigned → rejected
//
// completed, missed and rejected are terminal.
type AssignmentStatus string

const (
	AssignmentStatusAssigned       AssignmentStatus = "assigned"
	AssignmentStatusWorkerReported AssignmentStatus = "worker_reported"
	AssignmentStatusCompleted      AssignmentStatus = "completed"
	AssignmentStatusMissed         AssignmentStatus = "missed"
	AssignmentStatusRejected       AssignmentStatus = "rejected"
)

// IsTerminal reports whether the assignment can no longer change state.
func (s AssignmentStatus) IsTerminal() bool {
	switch s {
	case AssignmentStatusCompleted, AssignmentStatusMissed, AssignmentStatusRejected:
		return true
	}
	return false
}

// Open reports whether the assignment still occupies the worker's schedule.
// Only open assignments participate in conflict detection.
func (s AssignmentStatus) Open() bool {
	return s == AssignmentStatusAssigned || s == AssignmentStatusWorkerReported
}

// OpenAssignmentStatuses lists the statuses that count as booked time,
// in the order used by repository queries.
func OpenAssignmentStatuses() []string {
	return []string{string(AssignmentStatusAssigned), string(AssignmentStatusWorkerReported)}
}

// WorkerAvailability is a display hint on a worker profile. It is never
// consulted for conflict detection; losing a write race on it is tolerable.
type WorkerAvailability string

const (
	WorkerAvailable   WorkerAvailability = "available"
	WorkerBusy        WorkerAvailability = "busy"
	WorkerUnavailable WorkerAvailability = "unavailable"
)
