// Package problemdetails renders RFC 7807 error bodies.
package problemdetails

import "fmt"

const ContentType = "application/problem+json"

const (
	TypeUnauthorized      = "unauthorized"
	TypeInvalidInput      = "invalid-input"
	TypeNotFound          = "not-found"
	TypeExpired           = "expired"
	TypeCodeAlreadyExists = "code-already-exists"
	TypeCodeExhausted     = "code-exhausted"
	TypeStorageFailure    = "storage-failure"
)

type ProblemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	// Field names the rejected input for invalid-input problems
	Field string `json:"field,omitempty"`
}

func New(status int, problemType, title, detail string) *ProblemDetail {
	return &ProblemDetail{
		Type:   TypeURI(problemType),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

func NewInvalidInput(field, detail string) *ProblemDetail {
	p := New(400, TypeInvalidInput, "Invalid Input", detail)
	p.Field = field
	return p
}

func TypeURI(problemType string) string {
	return fmt.Sprintf("https://linkshort.dev/problems/%s", problemType)
}
