package guidelines

import (
	"fmt"
	"strings"
)

// Speciality is the closed-set medical domain of a guideline.
type Speciality string

const (
	Cardiology      Speciality = "cardiology"
	Respiratory     Speciality = "respiratory"
	Neurology       Speciality = "neurology"
	Oncology        Speciality = "oncology"
	Pediatrics      Speciality = "pediatrics"
	Emergency       Speciality = "emergency"
	Surgery         Speciality = "surgery"
	Psychiatry      Speciality = "psychiatry"
	Dermatology     Speciality = "dermatology"
	Orthopedics     Speciality = "orthopedics"
	Radiology       Speciality = "radiology"
	Pathology       Speciality = "pathology"
	Anesthesiology  Speciality = "anesthesiology"
	GeneralMedicine Speciality = "general_medicine"
	Other           Speciality = "other"
)

// Specialities lists every speciality in display order.
var Specialities = []Speciality{
	Cardiology,
	Respiratory,
	Neurology,
	Oncology,
	Pediatrics,
	Emergency,
	Surgery,
	Psychiatry,
	Dermatology,
	Orthopedics,
	Radiology,
	Pathology,
	Anesthesiology,
	GeneralMedicine,
	Other,
}

// ParseSpeciality returns the speciality named by s.
func ParseSpeciality(s string) (Speciality, error) {
	sp := Speciality(strings.TrimSpace(s))
	if sp.Valid() {
		return sp, nil
	}
	return "", fmt.Errorf("%w: unknown medical speciality %q", ErrValidation, s)
}

// Valid reports whether s is a member of the closed enumeration.
func (s Speciality) Valid() bool {
	for _, sp := range Specialities {
		if s == sp {
			return true
		}
	}
	return false
}

// Label returns the display form of s, e.g. "General Medicine".
func (s Speciality) Label() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// SpecialityOption pairs a speciality value with its display label.
type SpecialityOption struct {
	Value Speciality `json:"value"`
	Label string     `json:"label"`
}

// SpecialityOptions returns the enumeration with labels for selection lists.
func SpecialityOptions() []SpecialityOption {
	opts := make([]SpecialityOption, len(Specialities))
	for i, sp := range Specialities {
		opts[i] = SpecialityOption{Value: sp, Label: sp.Label()}
	}
	return opts
}
