package domain

import "testing"

func TestActivityStatusForRequestIsTotal(t *testing.T) {
	cases := []struct {
		request RequestStatus
		want    ActivityStatus
	}{
		{RequestStatusPending, ActivityStatusPending},
		{RequestStatusAccepted, ActivityStatusInProgress},
		{RequestStatusCompleted, ActivityStatusCompleted},
		// Cancelling the search for help leaves the underlying task open.
		{RequestStatusCancelled, ActivityStatusPending},
		{RequestStatusDeclined, ActivityStatusPending},
	}
	for _, tc := range cases {
		if got := ActivityStatusForRequest(tc.request); got != tc.want {
			t.Errorf("ActivityStatusForRequest(%s) = %s, want %s", tc.request, got, tc.want)
		}
	}
}

func TestRequestStatusForActivity(t *testing.T) {
	cases := []struct {
		activity ActivityStatus
		want     RequestStatus
		mapped   bool
	}{
		{ActivityStatusPending, RequestStatusPending, true},
		{ActivityStatusCompleted, RequestStatusCompleted, true},
		{ActivityStatusCancelled, RequestStatusCancelled, true},
		{ActivityStatusInProgress, "", false},
	}
	for _, tc := range cases {
		got, ok := RequestStatusForActivity(tc.activity)
		if ok != tc.mapped {
			t.Errorf("RequestStatusForActivity(%s) mapped = %v, want %v", tc.activity, ok, tc.mapped)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("RequestStatusForActivity(%s) = %s, want %s", tc.activity, got, tc.want)
		}
	}
}

func TestAssignmentStatusTerminality(t *testing.T) {
	open := []AssignmentStatus{AssignmentStatusAssigned, AssignmentStatusWorkerReported}
	for _, s := range open {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
		if !s.Open() {
			t.Errorf("%s should be open", s)
		}
	}

	terminal := []AssignmentStatus{AssignmentStatusCompleted, AssignmentStatusMissed, AssignmentStatusRejected}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
		if s.Open() {
			t.Errorf("%s should not be open", s)
		}
	}
}

func TestRequestKindPostsToLedger(t *testing.T) {
	if !RequestKindExchange.PostsToLedger() {
		t.Error("exchange requests must post to the ledger")
	}
	if !RequestKindMixed.PostsToLedger() {
		t.Error("mixed requests must post to the ledger")
	}
	if RequestKindPaid.PostsToLedger() {
		t.Error("paid requests must not post to the ledger")
	}
}
