// Package bank loads and validates quiz question banks.
//
// A bank is a sequence of single-key objects mapping a question identifier
// to its prompt and an ordered set of options:
//
//	[{"1": {"question": "2+2=?", "options": {"3": false, "4": true}}}]
//
// Option order is significant and is preserved on load.
package bank

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	ErrInvalidQuestion = errors.New("invalid question")
	ErrDuplicateID     = errors.New("duplicate question id")
	ErrEmptyBank       = errors.New("question bank is empty")
)

type Option struct {
	Text    string
	Correct bool
}

type Question struct {
	ID      string
	Prompt  string
	Options []Option
}

// Number returns the identifier as an integer when it is numeric.
func (q Question) Number() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(q.ID))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Title is the prompt prefixed with the question identifier.
func (q Question) Title() string {
	return fmt.Sprintf("%s. %s", q.ID, q.Prompt)
}

// CorrectIndex returns the index of the first correct option, or -1.
func (q Question) CorrectIndex() int {
	for i, o := range q.Options {
		if o.Correct {
			return i
		}
	}
	return -1
}

// Validate checks the invariants a question must satisfy before rendering.
func (q Question) Validate(maxOptions int) error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("%w: empty identifier", ErrInvalidQuestion)
	}
	if !safeID(q.ID) {
		return fmt.Errorf("question %q: %w: identifier is not a plain file name", q.ID, ErrInvalidQuestion)
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question %s: %w: empty prompt", q.ID, ErrInvalidQuestion)
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("question %s: %w: no options", q.ID, ErrInvalidQuestion)
	}
	if maxOptions > 0 && len(q.Options) > maxOptions {
		return fmt.Errorf("question %s: %w: %d options, at most %d allowed",
			q.ID, ErrInvalidQuestion, len(q.Options), maxOptions)
	}

	seen := make(map[string]bool, len(q.Options))
	correct := 0
	for _, o := range q.Options {
		if strings.TrimSpace(o.Text) == "" {
			return fmt.Errorf("question %s: %w: empty option text", q.ID, ErrInvalidQuestion)
		}
		if seen[o.Text] {
			return fmt.Errorf("question %s: %w: option %q listed twice", q.ID, ErrInvalidQuestion, o.Text)
		}
		seen[o.Text] = true
		if o.Correct {
			correct++
		}
	}
	if correct != 1 {
		return fmt.Errorf("question %s: %w: exactly one correct option required, got %d",
			q.ID, ErrInvalidQuestion, correct)
	}
	return nil
}

// Идентификатор становится частью имени файла в каталоге вывода.
func safeID(id string) bool {
	if id == "." || id == ".." || strings.ContainsAny(id, "/\\\x00") {
		return false
	}
	return filepath.Base(id) == id
}

// Validate checks every question and the uniqueness of identifiers.
// All problems are reported together.
func Validate(questions []Question, maxOptions int) error {
	if len(questions) == 0 {
		return ErrEmptyBank
	}
	var errs []error
	ids := make(map[string]bool, len(questions))
	for _, q := range questions {
		if ids[q.ID] {
			errs = append(errs, fmt.Errorf("question %s: %w", q.ID, ErrDuplicateID))
			continue
		}
		ids[q.ID] = true
		if err := q.Validate(maxOptions); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
