package domain

import "testing"

func TestJobStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to JobStatus
		want     bool
	}{
		{JobStatusQueued, JobStatusProcessing, true},
		{JobStatusQueued, JobStatusComplete, false},
		{JobStatusQueued, JobStatusFailed, false},
		{JobStatusProcessing, JobStatusComplete, true},
		{JobStatusProcessing, JobStatusFailed, true},
		{JobStatusProcessing, JobStatusQueued, false},
		{JobStatusComplete, JobStatusFailed, false},
		{JobStatusComplete, JobStatusProcessing, false},
		{JobStatusFailed, JobStatusQueued, false},
		{JobStatusFailed, JobStatusComplete, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s -> %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestJobStatusTerminal(t *testing.T) {
	if JobStatusQueued.Terminal() || JobStatusProcessing.Terminal() {
		t.Fatalf("queued/processing must be non-terminal")
	}
	if !JobStatusComplete.Terminal() || !JobStatusFailed.Terminal() {
		t.Fatalf("complete/failed must be terminal")
	}
}
