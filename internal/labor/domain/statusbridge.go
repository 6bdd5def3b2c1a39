package domain

// ActivityStatus is the narrow view of a linked farm activity's status.
// The labor core only ever reads and writes this one field of an activity.
type ActivityStatus string

const (
	ActivityStatusPending    ActivityStatus = "pending"
	ActivityStatusInProgress ActivityStatus = "in_progress"
	ActivityStatusCompleted  ActivityStatus = "completed"
	ActivityStatusCancelled  ActivityStatus = "cancelled"
)

// ActivityStatusForRequest maps a labor request status change onto the linked
// farm activity's status. Total over the request status enumeration.
//
// Cancelling or declining the search for help does not cancel the underlying
// task; the activity drops back to pending so the household can try again.
func ActivityStatusForRequest(status RequestStatus) ActivityStatus {
	switch status {
	case RequestStatusAccepted:
		return ActivityStatusInProgress
	case RequestStatusCompleted:
		return ActivityStatusCompleted
	default: // pending, cancelled, declined
		return ActivityStatusPending
	}
}

// RequestStatusForActivity maps a farm activity status change back onto the
// linked labor request. The second return is false when the activity status
// exerts no back-pressure on the request: in_progress deliberately has no
// forced back-mapping.
func RequestStatusForActivity(status ActivityStatus) (RequestStatus, bool) {
	switch status {
	case ActivityStatusPending:
		return RequestStatusPending, true
	case ActivityStatusCompleted:
		return RequestStatusCompleted, true
	case ActivityStatusCancelled:
		return RequestStatusCancelled, true
	default:
		return "", false
	}
}
