package intake

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		desc string
		id   string
		want Intake
	}{
		{
			desc: "canonical id",
			id:   "UmHoRqYDPQekYEJhdoX3_2025-12-28_05:40",
			want: Intake{
				ID:         "UmHoRqYDPQekYEJhdoX3_2025-12-28_05:40",
				MedicineID: "UmHoRqYDPQekYEJhdoX3",
				Timestamp:  "2025-12-28T05:40:00",
				TakenAt:    "2025-12-28 05:40",
				Status:     StatusTaken,
			},
		},
		{
			desc: "time written with underscore",
			id:   "med1_2025-01-02_07_15",
			want: Intake{
				ID:         "med1_2025-01-02_07_15",
				MedicineID: "med1",
				Timestamp:  "2025-01-02T07:15:00",
				TakenAt:    "2025-01-02 07:15",
				Status:     StatusTaken,
			},
		},
		{
			desc: "empty trailing segment",
			id:   "a_b_",
			want: Intake{
				ID:         "a_b_",
				MedicineID: "a",
				Timestamp:  "bT:00",
				TakenAt:    "b ",
				Status:     StatusTaken,
			},
		},
		{
			desc: "single segment",
			id:   "abc",
			want: Intake{ID: "abc", TakenAt: UnknownDate, Status: StatusTaken},
		},
		{
			desc: "two segments",
			id:   "abc_def",
			want: Intake{ID: "abc_def", TakenAt: UnknownDate, Status: StatusTaken},
		},
		{
			desc: "empty id",
			id:   "",
			want: Intake{ID: "", TakenAt: UnknownDate, Status: StatusTaken},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := Decode(tc.id)
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Errorf("Bad decode of %q; diff (-got +want)\n%s", tc.id, diff)
			}
		})
	}
}

func TestDecodeNeverPanics(t *testing.T) {
	ids := []string{"", "_", "__", "___", "a__", "__b", "ç_ğ_ü_ş", "\x00_\x00_\x00"}
	for _, id := range ids {
		got := Decode(id)
		if got.Status != StatusTaken {
			t.Errorf("Decode(%q).Status = %q, want %q", id, got.Status, StatusTaken)
		}
	}
}

func TestDecodeAllPreservesOrder(t *testing.T) {
	ids := []string{"m_2025-12-28_05:40", "bad", "m_2025-12-27_21:00"}

	got := DecodeAll(ids)

	var gotTakenAt []string
	for _, in := range got {
		gotTakenAt = append(gotTakenAt, in.TakenAt)
	}
	want := []string{"2025-12-28 05:40", UnknownDate, "2025-12-27 21:00"}
	if diff := cmp.Diff(gotTakenAt, want); diff != "" {
		t.Errorf("Bad takenAt sequence; diff (-got +want)\n%s", diff)
	}
}
