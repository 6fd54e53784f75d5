package domain

import "fmt"

// EntityType is the kind of record a search hit refers to.
type EntityType int

const (
	// Experiment is the root of the permission graph.
	Experiment EntityType = iota + 1
	// Dataset belongs to one or more experiments.
	Dataset
	// Datafile belongs to exactly one dataset.
	Datafile
)

// EntityTypes lists every entity type in canonical order.
var EntityTypes = [...]EntityType{Experiment, Dataset, Datafile}

// ParseEntityType maps an API type tag to an EntityType.
func ParseEntityType(tag string) (EntityType, error) {
	switch tag {
	case "Experiment":
		return Experiment, nil
	case "Dataset":
		return Dataset, nil
	case "Datafile":
		return Datafile, nil
	}
	return 0, fmt.Errorf("%w: unknown entity type %q", ErrInvalidRequest, tag)
}

// IsValid reports whether t is one of the known entity types.
func (t EntityType) IsValid() bool {
	return t >= Experiment && t <= Datafile
}

// String returns the API type tag.
func (t EntityType) String() string {
	switch t {
	case Experiment:
		return "Experiment"
	case Dataset:
		return "Dataset"
	case Datafile:
		return "Datafile"
	}
	return fmt.Sprintf("EntityType(%d)", int(t))
}

// BucketKey returns the response key for hits of this type.
func (t EntityType) BucketKey() string {
	switch t {
	case Experiment:
		return "experiments"
	case Dataset:
		return "datasets"
	case Datafile:
		return "datafiles"
	}
	return ""
}

// RecordName is the lower-case name used in record keys.
func (t EntityType) RecordName() string {
	switch t {
	case Experiment:
		return "experiment"
	case Dataset:
		return "dataset"
	case Datafile:
		return "datafile"
	}
	return ""
}
