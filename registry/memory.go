package registry

import (
	"context"
	"sort"
	"sync"
)

// =============================================================================
// MEMORY REGISTRY - In-memory implementation of both registries
// =============================================================================

// Memory implements EmployeeRegistry and ProjectRegistry over maps. Lookups
// return copies so callers work on snapshots and cannot mutate registry state
// behind its back.
type Memory struct {
	mu        sync.RWMutex
	employees map[string]Employee
	projects  map[string]Project
}

var (
	_ EmployeeRegistry = (*Memory)(nil)
	_ ProjectRegistry  = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		employees: make(map[string]Employee),
		projects:  make(map[string]Project),
	}
}

// Reset clears all records (for demo scenario loading).
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = make(map[string]Employee)
	m.projects = make(map[string]Project)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// PutEmployee inserts or replaces an employee record.
func (m *Memory) PutEmployee(e Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
}

func (m *Memory) Employee(_ context.Context, id string) (*Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.employees[id]
	if !ok {
		return nil, &NotFoundError{Kind: "employee", ID: id}
	}
	out := e
	return &out, nil
}

func (m *Memory) ActiveEmployees(_ context.Context) ([]*Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Employee
	for _, e := range m.employees {
		if e.Active {
			c := e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// PROJECTS
// =============================================================================

// PutProject inserts or replaces a project record.
func (m *Memory) PutProject(p Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = copyProject(p)
}

func (m *Memory) Project(_ context.Context, id string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, &NotFoundError{Kind: "project", ID: id}
	}
	out := copyProject(p)
	return &out, nil
}

func (m *Memory) Projects(_ context.Context) ([]*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Project
	for _, p := range m.projects {
		c := copyProject(p)
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) AssignmentsByEmployee(_ context.Context, employeeID string) ([]Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Assignment
	for _, p := range m.projects {
		for _, a := range p.Assignments {
			if a.EmployeeID == employeeID {
				out = append(out, a)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProjectID < out[j].ProjectID })
	return out, nil
}

func (m *Memory) AddVariableExpense(_ context.Context, projectID string, e VariableExpense) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[projectID]
	if !ok {
		return &NotFoundError{Kind: "project", ID: projectID}
	}
	p.VariableExpenses = append(p.VariableExpenses, e)
	m.projects[projectID] = p
	return nil
}

// SetCertification records the recognized revenue for one period, replacing
// any existing certification for the same (year, month).
func (m *Memory) SetCertification(_ context.Context, projectID string, c Certification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[projectID]
	if !ok {
		return &NotFoundError{Kind: "project", ID: projectID}
	}
	for i := range p.Certifications {
		if p.Certifications[i].Year == c.Year && p.Certifications[i].Month == c.Month {
			p.Certifications[i] = c
			m.projects[projectID] = p
			return nil
		}
	}
	p.Certifications = append(p.Certifications, c)
	m.projects[projectID] = p
	return nil
}

func (m *Memory) AddAssignment(_ context.Context, a Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[a.ProjectID]
	if !ok {
		return &NotFoundError{Kind: "project", ID: a.ProjectID}
	}
	p.Assignments = append(p.Assignments, a)
	m.projects[a.ProjectID] = p
	return nil
}

func copyProject(p Project) Project {
	out := p
	out.Certifications = append([]Certification(nil), p.Certifications...)
	out.Assignments = append([]Assignment(nil), p.Assignments...)
	out.VariableExpenses = append([]VariableExpense(nil), p.VariableExpenses...)
	return out
}
