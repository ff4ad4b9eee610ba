// Package patch applies structured edit requests to html and describes
// differences between document versions.
package patch

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"docconv/common"
)

var ErrInvalidPatch = errors.New("invalid patch")

// Change is single edit. Selector picks elements, Operation says what to do
// with them.
type Change struct {
	Selector   string            `json:"selector"`
	Operation  common.Operation  `json:"operation"`
	Style      map[string]string `json:"style,omitempty"`
	Content    string            `json:"content,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// DocumentPatch is ordered list of changes applied as a unit.
type DocumentPatch struct {
	Kind        common.PatchKind `json:"type"`
	Changes     []Change         `json:"changes"`
	Description string           `json:"description,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// ChangeError points to offending change. Index is -1 when problem is with
// patch as a whole.
type ChangeError struct {
	Index  int
	Reason string
}

func (e *ChangeError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", ErrInvalidPatch, e.Reason)
	}
	return fmt.Sprintf("%s: change %d: %s", ErrInvalidPatch, e.Index, e.Reason)
}

func (e *ChangeError) Unwrap() error {
	return ErrInvalidPatch
}

// Validate checks patch invariants. maxChanges <= 0 means no limit.
func (p *DocumentPatch) Validate(maxChanges int) error {
	if p == nil || len(p.Changes) == 0 {
		return &ChangeError{Index: -1, Reason: "no changes"}
	}
	if maxChanges > 0 && len(p.Changes) > maxChanges {
		return &ChangeError{Index: -1, Reason: fmt.Sprintf("too many changes (%d > %d)", len(p.Changes), maxChanges)}
	}
	for i := range p.Changes {
		if err := p.Changes[i].validate(); err != nil {
			return &ChangeError{Index: i, Reason: err.Error()}
		}
	}
	return nil
}

func (c *Change) validate() error {
	if c.Operation == 0 {
		return errors.New("missing operation")
	}
	if !c.Operation.IsValid() {
		return fmt.Errorf("unknown operation %d", c.Operation)
	}
	if _, err := parseSelector(c.Selector); err != nil {
		return err
	}
	if c.Operation.RequiresStyle() && !hasEntries(c.Style) {
		return fmt.Errorf("%s requires style", c.Operation)
	}
	if c.Operation.RequiresContent() && strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%s requires content", c.Operation)
	}
	return nil
}

func hasEntries(m map[string]string) bool {
	for k, v := range m {
		if strings.TrimSpace(k) != "" && strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
