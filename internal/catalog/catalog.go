// Package catalog holds the immutable question bank an assessment runs against.
//
// A catalog is built once at startup from ordered question modules and is
// read-only afterwards, so it can be shared by every session without locking.
package catalog

import (
	"fmt"

	"cnmaturity/internal/model"
)

// Catalog is the validated, merged question bank
type Catalog struct {
	questions  []*model.Question // grouped by category, declaration order
	byID       map[string]*model.Question
	categories []string
	byCategory map[string][]*model.Question
	modules    map[string]string // question ID -> module name
}

// Load merges modules in order and validates the result.
// Validation runs shape checks, duplicate IDs, dangling dependencies and
// finally cycle detection; the first failure is returned.
func Load(modules ...model.QuestionModule) (*Catalog, error) {
	c := &Catalog{
		byID:       make(map[string]*model.Question),
		byCategory: make(map[string][]*model.Question),
		modules:    make(map[string]string),
	}

	for _, m := range modules {
		for i, src := range m.Questions {
			if src == nil {
				return nil, &InvalidQuestionError{Module: m.Name, Reason: fmt.Sprintf("entry %d is empty", i)}
			}
			q := *src
			if q.Category == "" {
				q.Category = m.Category
			}
			if err := validateQuestion(m.Name, &q); err != nil {
				return nil, err
			}
			if prev, ok := c.modules[q.ID]; ok {
				return nil, &DuplicateQuestionIDError{ID: q.ID, Modules: [2]string{prev, m.Name}}
			}
			c.modules[q.ID] = m.Name
			c.byID[q.ID] = &q
			if _, seen := c.byCategory[q.Category]; !seen {
				c.categories = append(c.categories, q.Category)
			}
			c.byCategory[q.Category] = append(c.byCategory[q.Category], &q)
		}
	}

	for _, cat := range c.categories {
		c.questions = append(c.questions, c.byCategory[cat]...)
	}

	for _, q := range c.questions {
		for _, dep := range q.Dependencies {
			if _, ok := c.byID[dep.QuestionID]; !ok {
				return nil, &DanglingDependencyError{QuestionID: q.ID, DependsOn: dep.QuestionID}
			}
		}
	}

	if cycle := c.findCycle(); cycle != nil {
		return nil, &DependencyCycleError{Path: cycle}
	}
	return c, nil
}

// Get returns the question with the given ID
func (c *Catalog) Get(id string) (*model.Question, error) {
	q, ok := c.byID[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return q, nil
}

// Questions returns every question in catalog order.
// The slice is shared; callers must not modify it.
func (c *Catalog) Questions() []*model.Question {
	return c.questions
}

// Categories returns category keys in first-declaration order
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

// InCategory returns the questions of one category in declaration order
func (c *Catalog) InCategory(category string) []*model.Question {
	return c.byCategory[category]
}

// Module returns the name of the module that declared a question
func (c *Catalog) Module(id string) string {
	return c.modules[id]
}

// Len is the number of questions
func (c *Catalog) Len() int {
	return len(c.questions)
}

const (
	white = iota
	grey
	black
)

// findCycle runs a DFS with in-progress marking over the dependency edges
// and returns the first cycle found as a closed path, or nil.
func (c *Catalog) findCycle() []string {
	color := make(map[string]int, len(c.questions))
	var stack []string

	var visit func(id string) []string
	visit = func(id string) []string {
		color[id] = grey
		stack = append(stack, id)
		for _, dep := range c.byID[id].Dependencies {
			switch color[dep.QuestionID] {
			case grey:
				start := 0
				for i, s := range stack {
					if s == dep.QuestionID {
						start = i
						break
					}
				}
				path := append([]string{}, stack[start:]...)
				return append(path, dep.QuestionID)
			case white:
				if cycle := visit(dep.QuestionID); cycle != nil {
					return cycle
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return nil
	}

	for _, q := range c.questions {
		if color[q.ID] == white {
			if cycle := visit(q.ID); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
