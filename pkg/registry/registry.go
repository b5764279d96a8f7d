// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Find returns the activity registered for taskType.
func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Validate checks required fields, uniqueness and that the registry matches
// the task types and BPMN error codes the fleet actually serves. Every
// problem found is reported, not just the first.
func (r *ActivityRegistry) Validate(taskTypes []string, errorCodes []string) []error {
	var problems []error
	if len(r.Activities) == 0 {
		return []error{fmt.Errorf("registry contains no activities")}
	}

	knownCodes := make(map[string]bool, len(errorCodes))
	for _, c := range errorCodes {
		knownCodes[c] = true
	}

	ids := make(map[string]bool)
	registered := make(map[string]bool)
	for _, a := range r.Activities {
		if a.ID == "" {
			problems = append(problems, fmt.Errorf("activity missing required field: ID"))
			continue
		}
		if ids[a.ID] {
			problems = append(problems, fmt.Errorf("duplicate activity ID: %s", a.ID))
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			problems = append(problems, fmt.Errorf("activity %s missing required field: DisplayName", a.ID))
		}
		if a.TaskType == "" {
			problems = append(problems, fmt.Errorf("activity %s missing required field: TaskType", a.ID))
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				problems = append(problems, fmt.Errorf("activity %s has invalid timeout %q", a.ID, a.Timeout))
			}
		}
		for _, code := range a.ErrorCodes {
			if !knownCodes[code] {
				problems = append(problems, fmt.Errorf("activity %s lists unknown error code %s", a.ID, code))
			}
		}
		registered[a.TaskType] = true
	}

	missing := make([]string, 0)
	for _, tt := range taskTypes {
		if !registered[tt] {
			missing = append(missing, tt)
		}
		delete(registered, tt)
	}
	sort.Strings(missing)
	for _, tt := range missing {
		problems = append(problems, fmt.Errorf("task type %s has no registry entry", tt))
	}

	extra := make([]string, 0, len(registered))
	for tt := range registered {
		if tt != "" {
			extra = append(extra, tt)
		}
	}
	sort.Strings(extra)
	for _, tt := range extra {
		problems = append(problems, fmt.Errorf("registry entry %s has no worker", tt))
	}

	return problems
}
