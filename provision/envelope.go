package provision

import (
	"encoding/json"
	"fmt"

	"github.com/gmyun1999/MY-LOG-BE/chassis/storage"
)

// Step - one provisioning task with its serialized arguments.
type Step struct {
	TaskID string           `json:"task_id"`
	Name   storage.TaskName `json:"task_name"`
	Args   json.RawMessage  `json:"args"`
}

// Envelope - a dependency-ordered chain in flight. Position points at
// the step to execute next; Attempt counts retries of that step only.
// Failure is the error link, run at most once when a step fails
// terminally; a failure-only envelope carries no error link itself.
type Envelope struct {
	Steps    []Step `json:"steps"`
	Position int    `json:"position"`
	Attempt  int    `json:"attempt"`
	Failure  *Step  `json:"failure,omitempty"`
}

// Current - the step at Position.
func (e *Envelope) Current() *Step {
	if e.Position < 0 || e.Position >= len(e.Steps) {
		return nil
	}
	return &e.Steps[e.Position]
}

// JSON - convert struct to json
func (e *Envelope) JSON() (string, error) {
	bin, err := json.Marshal(e)
	return string(bin), err
}

// FromJSON - convert json to struct
func (e *Envelope) FromJSON(jsonString string) error {
	return json.Unmarshal([]byte(jsonString), e)
}

// String representation
func (e *Envelope) String() string {
	current := "-"
	if step := e.Current(); step != nil {
		current = string(step.Name)
	}
	return fmt.Sprintf("steps=%d position=%d attempt=%d current=%s", len(e.Steps), e.Position, e.Attempt, current)
}
