// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

package internal_type

import (
	"fmt"
	"strings"
)

// Party identifies one side of the consultation.
type Party int

const (
	Clinician Party = iota
	Patient
)

func (p Party) String() string {
	switch p {
	case Clinician:
		return "Clinician"
	case Patient:
		return "Patient"
	default:
		return fmt.Sprintf("Party(%d)", int(p))
	}
}

// Other returns the counterpart of p.
func (p Party) Other() Party {
	if p == Clinician {
		return Patient
	}
	return Clinician
}

func (p Party) Valid() bool {
	return p == Clinician || p == Patient
}

// Speaker is the label used when a transcript is serialized for analysis.
func (p Party) Speaker() string {
	if p == Clinician {
		return "Doctor"
	}
	return "Patient"
}

// ParseParty accepts the lower case wire names and a few aliases.
func ParseParty(s string) (Party, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clinician", "doctor":
		return Clinician, nil
	case "patient":
		return Patient, nil
	}
	return 0, fmt.Errorf("unknown party %q", s)
}

func (p Party) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid party %d", int(p))
	}
	return []byte(strings.ToLower(p.String())), nil
}

func (p *Party) UnmarshalText(b []byte) error {
	v, err := ParseParty(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
