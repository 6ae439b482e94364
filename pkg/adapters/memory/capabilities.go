package memory

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/unanue/mostrador/pkg/domain"
	"github.com/unanue/mostrador/pkg/ports"
)

// Directory implements ports.IdentityStore over a fixed set of employees.
type Directory struct {
	mu    sync.RWMutex
	users map[string]ports.UserRecord
}

// NewDirectory creates a directory with the given employees, keyed by email.
func NewDirectory(users ...ports.UserRecord) *Directory {
	d := &Directory{users: make(map[string]ports.UserRecord, len(users))}
	for _, u := range users {
		d.users[strings.ToLower(u.Email)] = u
	}
	return d
}

// Add inserts or replaces an employee record.
func (d *Directory) Add(u ports.UserRecord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[strings.ToLower(u.Email)] = u
}

func (d *Directory) FindUserByEmail(_ context.Context, email string) (*ports.UserRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// DemoDirectory returns the directory used by the interactive demo and the
// package examples.
func DemoDirectory() *Directory {
	return NewDirectory(
		ports.UserRecord{
			ID: "emp-001", Name: "Juan", Surname: "Pérez",
			Email: "juan.perez@eroski.es", EmployeeNumber: "12345",
			Role: "cajero", Department: "caja", Store: "Eroski Bilbao", Active: true,
		},
		ports.UserRecord{
			ID: "emp-002", Name: "María", Surname: "García",
			Email: "maria.garcia@eroski.es", EmployeeNumber: "23456",
			Role: "responsable", Department: "frescos", Store: "Eroski Getxo", Active: true,
		},
		ports.UserRecord{
			ID: "emp-003", Name: "Carlos", Surname: "Ruiz",
			Email: "carlos.ruiz@eroski.es", EmployeeNumber: "34567",
			Role: "reponedor", Department: "almacén", Active: false,
		},
	)
}

// IncidentBook implements ports.IncidentStore in memory. Tracking codes are a
// two-letter prefix plus four random digits, regenerated on collision.
type IncidentBook struct {
	mu       sync.Mutex
	prefix   string
	records  map[string]ports.IncidentRecord
	messages map[string][]domain.Message
	randInt  func(n int) int
}

// NewIncidentBook creates an empty incident book. The prefix must be two
// letters; it defaults to "ER".
func NewIncidentBook(prefix string) *IncidentBook {
	if len(prefix) != 2 {
		prefix = "ER"
	}
	return &IncidentBook{
		prefix:   strings.ToUpper(prefix),
		records:  make(map[string]ports.IncidentRecord),
		messages: make(map[string][]domain.Message),
		randInt:  rand.IntN,
	}
}

func (b *IncidentBook) CreateIncident(_ context.Context, rec ports.IncidentRecord) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	code := b.nextCode()
	b.records[code] = rec
	return code, nil
}

func (b *IncidentBook) UpdateIncident(_ context.Context, code string, partial ports.IncidentRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[code]
	if !ok {
		return domain.ErrIncidentNotFound
	}
	if partial.Description != "" {
		rec.Description = partial.Description
	}
	if partial.Reason != "" {
		rec.Reason = partial.Reason
	}
	if partial.Priority != 0 {
		rec.Priority = partial.Priority
	}
	rec.Escalated = rec.Escalated || partial.Escalated
	b.records[code] = rec
	return nil
}

func (b *IncidentBook) AppendMessages(_ context.Context, code string, messages []domain.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.records[code]; !ok {
		return domain.ErrIncidentNotFound
	}
	b.messages[code] = append(b.messages[code], messages...)
	return nil
}

// Get returns a filed incident by tracking code.
func (b *IncidentBook) Get(code string) (ports.IncidentRecord, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[code]
	return rec, ok
}

// Len returns the number of filed incidents.
func (b *IncidentBook) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

func (b *IncidentBook) nextCode() string {
	for {
		code := fmt.Sprintf("%s%04d", b.prefix, b.randInt(10000))
		if _, taken := b.records[code]; !taken {
			return code
		}
	}
}
