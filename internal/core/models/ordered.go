package models

import (
	"bytes"
	"encoding/json"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Count is one entry of a Counts map.
type Count struct {
	Name  string
	Count int
}

// Counts is a name → count map that remembers first-seen order, including
// across JSON round trips. The zero value is an empty map.
type Counts struct {
	m *orderedmap.OrderedMap[string, int]
}

func (c *Counts) init() {
	if c.m == nil {
		c.m = orderedmap.New[string, int]()
	}
}

// Inc adds one to name and returns the new count.
func (c *Counts) Inc(name string) int {
	c.init()
	n, _ := c.m.Get(name)
	n++
	c.m.Set(name, n)
	return n
}

// Get returns the count for name (0 when absent).
func (c Counts) Get(name string) int {
	if c.m == nil {
		return 0
	}
	n, _ := c.m.Get(name)
	return n
}

// Len returns the number of names.
func (c Counts) Len() int {
	if c.m == nil {
		return 0
	}
	return c.m.Len()
}

// Entries returns every count in first-seen order.
func (c Counts) Entries() []Count {
	if c.m == nil {
		return nil
	}
	out := make([]Count, 0, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Count{Name: pair.Key, Count: pair.Value})
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (c Counts) MarshalJSON() ([]byte, error) {
	if c.m == nil {
		return []byte("{}"), nil
	}
	return c.m.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Counts) UnmarshalJSON(data []byte) error {
	c.m = orderedmap.New[string, int]()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	return c.m.UnmarshalJSON(data)
}

// Task is one checklist item.
type Task struct {
	Task      string `json:"task"`
	Timeframe string `json:"timeframe"`
}

// Stage is a named group of checklist tasks.
type Stage struct {
	Name  string
	Tasks []Task
}

// Checklist is a staged hiring task list. Stages keep insertion order in
// memory and in JSON.
type Checklist struct {
	stages *orderedmap.OrderedMap[string, []Task]
}

// NewChecklist builds a checklist from stages in order.
func NewChecklist(stages ...Stage) Checklist {
	c := Checklist{stages: orderedmap.New[string, []Task]()}
	for _, s := range stages {
		c.stages.Set(s.Name, append([]Task(nil), s.Tasks...))
	}
	return c
}

// Stages returns the stages in order.
func (c Checklist) Stages() []Stage {
	if c.stages == nil {
		return nil
	}
	out := make([]Stage, 0, c.stages.Len())
	for pair := c.stages.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, Stage{Name: pair.Key, Tasks: pair.Value})
	}
	return out
}

// Tasks returns the tasks of the named stage.
func (c Checklist) Tasks(stage string) []Task {
	if c.stages == nil {
		return nil
	}
	tasks, _ := c.stages.Get(stage)
	return tasks
}

// Append adds a task to the end of stage, creating the stage if needed.
func (c *Checklist) Append(stage string, task Task) {
	if c.stages == nil {
		c.stages = orderedmap.New[string, []Task]()
	}
	tasks, _ := c.stages.Get(stage)
	c.stages.Set(stage, append(tasks, task))
}

// Map applies fn to every task in place.
func (c Checklist) Map(fn func(Task) Task) {
	if c.stages == nil {
		return
	}
	for pair := c.stages.Oldest(); pair != nil; pair = pair.Next() {
		for i := range pair.Value {
			pair.Value[i] = fn(pair.Value[i])
		}
	}
}

// Clone returns a deep copy.
func (c Checklist) Clone() Checklist {
	return NewChecklist(c.Stages()...)
}

// MarshalJSON implements json.Marshaler.
func (c Checklist) MarshalJSON() ([]byte, error) {
	if c.stages == nil {
		return []byte("{}"), nil
	}
	return c.stages.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler. Legacy documents hold the
// checklist as a JSON-encoded string; it is decoded the same way.
func (c *Checklist) UnmarshalJSON(data []byte) error {
	c.stages = orderedmap.New[string, []Task]()
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return err
		}
		data = bytes.TrimSpace([]byte(inner))
		if len(data) == 0 {
			return nil
		}
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	return c.stages.UnmarshalJSON(data)
}

// String renders the checklist as indented JSON without HTML escaping.
func (c Checklist) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "{}"
	}
	return htmlUnescaper.Replace(string(data))
}

var htmlUnescaper = strings.NewReplacer(`\u0026`, "&", `\u003c`, "<", `\u003e`, ">")
