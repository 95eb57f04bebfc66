package dbtypes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSchedule(t *testing.T) {
	testCases := []struct {
		desc string
		med  Medicine
		want []string
	}{
		{desc: "times list wins", med: Medicine{Time: "08:00", Times: []string{"09:00", "21:00"}}, want: []string{"09:00", "21:00"}},
		{desc: "single time", med: Medicine{Time: "08:00"}, want: []string{"08:00"}},
		{desc: "nothing", med: Medicine{}, want: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if diff := cmp.Diff(tc.med.Schedule(), tc.want); diff != "" {
				t.Errorf("Bad schedule; diff (-got +want)\n%s", diff)
			}
		})
	}
}

func TestIsActiveDefaultsTrue(t *testing.T) {
	inactive := false
	if !(&Medicine{}).IsActive() {
		t.Errorf("Medicine without active flag should be active")
	}
	if (&Medicine{Active: &inactive}).IsActive() {
		t.Errorf("Medicine with active=false should not be active")
	}
}
