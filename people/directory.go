/*
Package people resolves taxpayers by id for the tax engine.

PURPOSE:
  The engine never fetches people itself. Callers resolve a tax.Person
  through a Directory and hand the value to the calculator.

IMPLEMENTATIONS:
  - Memory (this package):      in-process, for tests and dev
  - Client (this package):      remote people service over HTTP
  - store/sqlite.Store:          local SQLite table

ERRORS:
  ErrPersonNotFound is the only lookup-specific condition. It is propagated
  unchanged to the caller, which maps it to 404.
*/
package people

import (
	"context"
	"errors"
	"fmt"

	"github.com/warp/tax-engine/tax"
)

// ErrPersonNotFound is returned when no person has the requested id.
var ErrPersonNotFound = errors.New("person not found")

// ErrReadOnly is returned by directories that cannot store people.
var ErrReadOnly = errors.New("person directory is read-only")

// NotFoundError names the missing id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("person not found with id: %d", e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrPersonNotFound }

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPersonNotFound)
}

// Directory looks people up by id.
type Directory interface {
	Get(ctx context.Context, id int64) (tax.Person, error)
}

// Store is a Directory that can also create and list people.
type Store interface {
	Directory

	// Save stores p. A zero id is replaced by a generated one; the stored
	// person is returned.
	Save(ctx context.Context, p tax.Person) (tax.Person, error)

	// List returns every person ordered by id.
	List(ctx context.Context) ([]tax.Person, error)

	// Delete removes a person. A missing id yields a NotFoundError.
	Delete(ctx context.Context, id int64) error
}

// WithID returns a copy of p carrying id.
func WithID(p tax.Person, id int64) tax.Person {
	switch v := p.(type) {
	case tax.FullTimeEmployee:
		v.ID = id
		return v
	case tax.Contractor:
		v.ID = id
		return v
	case tax.SelfEmployed:
		v.ID = id
		return v
	case tax.BusinessOwner:
		v.ID = id
		return v
	}
	return p
}
