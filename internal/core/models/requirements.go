package models

import (
	"fmt"
	"slices"

	"github.com/neilberkman/hireplan/internal/core/errs"
)

// Requirements is the hiring-needs record accumulated from a conversation.
// Every per-role entry refers to a role listed in Roles.
type Requirements struct {
	Roles           []string             `json:"roles"`
	Skills          map[string][]string  `json:"skills"`
	Experience      map[string]string    `json:"experience"`
	Timeline        *int                 `json:"timeline"` // weeks, shared by all roles
	Budget          map[string]string    `json:"budget"`
	JobDescriptions map[string]string    `json:"job_descriptions,omitempty"`
	HiringPlan      map[string]Checklist `json:"hiring_plan,omitempty"`
}

// NewRequirements returns an empty record with initialized maps.
func NewRequirements() Requirements {
	var r Requirements
	r.Normalize()
	return r
}

// Normalize initializes nil collections so that an empty record encodes the
// same way before and after a round trip.
func (r *Requirements) Normalize() {
	if r.Roles == nil {
		r.Roles = []string{}
	}
	if r.Skills == nil {
		r.Skills = map[string][]string{}
	}
	if r.Experience == nil {
		r.Experience = map[string]string{}
	}
	if r.Budget == nil {
		r.Budget = map[string]string{}
	}
}

// HasRole reports whether role is in the role set.
func (r Requirements) HasRole(role string) bool {
	return slices.Contains(r.Roles, role)
}

// AddRole appends role if it is not already present. It reports whether the
// role was added.
func (r *Requirements) AddRole(role string) bool {
	if r.HasRole(role) {
		return false
	}
	r.Roles = append(r.Roles, role)
	return true
}

// Validate reports the first per-role entry whose role is not in Roles.
func (r Requirements) Validate() error {
	if role, ok := unlistedRole(r, r.Skills); ok {
		return unknownRole("skills", role)
	}
	if role, ok := unlistedRole(r, r.Experience); ok {
		return unknownRole("experience", role)
	}
	if role, ok := unlistedRole(r, r.Budget); ok {
		return unknownRole("budget", role)
	}
	if role, ok := unlistedRole(r, r.JobDescriptions); ok {
		return unknownRole("job_descriptions", role)
	}
	if role, ok := unlistedRole(r, r.HiringPlan); ok {
		return unknownRole("hiring_plan", role)
	}
	return nil
}

func unlistedRole[V any](r Requirements, m map[string]V) (string, bool) {
	for role := range m {
		if !r.HasRole(role) {
			return role, true
		}
	}
	return "", false
}

func unknownRole(field, role string) error {
	return fmt.Errorf("%s: %w", field, &errs.NotFoundError{Kind: "role", ID: role})
}

// TimelineWeeks returns the timeline or def when unset.
func (r Requirements) TimelineWeeks(def int) int {
	if r.Timeline == nil {
		return def
	}
	return *r.Timeline
}

// Clone returns a deep copy.
func (r Requirements) Clone() Requirements {
	out := Requirements{
		Roles:      slices.Clone(r.Roles),
		Skills:     make(map[string][]string, len(r.Skills)),
		Experience: make(map[string]string, len(r.Experience)),
		Budget:     make(map[string]string, len(r.Budget)),
	}
	if out.Roles == nil {
		out.Roles = []string{}
	}
	for k, v := range r.Skills {
		out.Skills[k] = slices.Clone(v)
	}
	for k, v := range r.Experience {
		out.Experience[k] = v
	}
	for k, v := range r.Budget {
		out.Budget[k] = v
	}
	if r.Timeline != nil {
		weeks := *r.Timeline
		out.Timeline = &weeks
	}
	if r.JobDescriptions != nil {
		out.JobDescriptions = make(map[string]string, len(r.JobDescriptions))
		for k, v := range r.JobDescriptions {
			out.JobDescriptions[k] = v
		}
	}
	if r.HiringPlan != nil {
		out.HiringPlan = make(map[string]Checklist, len(r.HiringPlan))
		for k, v := range r.HiringPlan {
			out.HiringPlan[k] = v.Clone()
		}
	}
	return out
}
