package domain

import (
	"errors"
	"testing"
)

func TestParseEntityType(t *testing.T) {
	tests := []struct {
		tag  string
		want EntityType
	}{
		{"Experiment", Experiment},
		{"Dataset", Dataset},
		{"Datafile", Datafile},
	}
	for _, tc := range tests {
		got, err := ParseEntityType(tc.tag)
		if err != nil {
			t.Fatalf("ParseEntityType(%q): %v", tc.tag, err)
		}
		if got != tc.want {
			t.Errorf("ParseEntityType(%q) = %v, want %v", tc.tag, got, tc.want)
		}
		if got.String() != tc.tag {
			t.Errorf("String() = %q, want %q", got.String(), tc.tag)
		}
	}
}

func TestParseEntityType_Unknown(t *testing.T) {
	for _, tag := range []string{"", "experiment", "Project"} {
		_, err := ParseEntityType(tag)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("ParseEntityType(%q): expected ErrInvalidRequest, got %v", tag, err)
		}
	}
}

func TestEntityType_Keys(t *testing.T) {
	want := map[EntityType][2]string{
		Experiment: {"experiments", "experiment"},
		Dataset:    {"datasets", "dataset"},
		Datafile:   {"datafiles", "datafile"},
	}
	for _, et := range EntityTypes {
		if got := et.BucketKey(); got != want[et][0] {
			t.Errorf("%v.BucketKey() = %q", et, got)
		}
		if got := et.RecordName(); got != want[et][1] {
			t.Errorf("%v.RecordName() = %q", et, got)
		}
	}
	if EntityType(0).IsValid() || EntityType(9).IsValid() {
		t.Error("out-of-range entity types must be invalid")
	}
}

func TestRecordKey(t *testing.T) {
	if got := RecordKey("tardis:", Dataset, "42"); got != "tardis:dataset:42" {
		t.Errorf("got %q", got)
	}
	if got := SearchDocPrefix("tardis:", "experiments"); got != "tardis:search:experiments:" {
		t.Errorf("got %q", got)
	}
}

func TestPrincipal_IsAnonymous(t *testing.T) {
	if !Anonymous.IsAnonymous() {
		t.Error("Anonymous must be anonymous")
	}
	if (Principal{ID: "u1"}).IsAnonymous() {
		t.Error("u1 must not be anonymous")
	}
}
