package patch

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"docconv/common"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		patch   *DocumentPatch
		max     int
		wantIdx int
		wantErr bool
	}{
		{name: "nil", patch: nil, wantErr: true, wantIdx: -1},
		{name: "empty", patch: &DocumentPatch{}, wantErr: true, wantIdx: -1},
		{
			name: "replace without style",
			patch: &DocumentPatch{Changes: []Change{
				{Selector: "p", Operation: common.OperationRemove},
				{Selector: "h1", Operation: common.OperationReplace},
			}},
			wantErr: true, wantIdx: 1,
		},
		{
			name:    "modify with blank style",
			patch:   &DocumentPatch{Changes: []Change{{Selector: "p", Operation: common.OperationModify, Style: map[string]string{"color": " "}}}},
			wantErr: true, wantIdx: 0,
		},
		{
			name:    "add without content",
			patch:   &DocumentPatch{Changes: []Change{{Selector: "p", Operation: common.OperationAdd}}},
			wantErr: true, wantIdx: 0,
		},
		{
			name:    "unsafe selector",
			patch:   &DocumentPatch{Changes: []Change{{Selector: "div > p", Operation: common.OperationRemove}}},
			wantErr: true, wantIdx: 0,
		},
		{
			name:    "missing operation",
			patch:   &DocumentPatch{Changes: []Change{{Selector: "p", Style: map[string]string{"color": "red"}}}},
			wantErr: true, wantIdx: 0,
		},
		{
			name:    "unknown operation",
			patch:   &DocumentPatch{Changes: []Change{{Selector: "p", Operation: common.Operation(42)}}},
			wantErr: true, wantIdx: 0,
		},
		{
			name: "too many changes",
			patch: &DocumentPatch{Changes: []Change{
				{Selector: "p", Operation: common.OperationRemove},
				{Selector: "p", Operation: common.OperationRemove},
			}},
			max: 1, wantErr: true, wantIdx: -1,
		},
		{
			name: "valid",
			patch: &DocumentPatch{Changes: []Change{
				{Selector: "p.note", Operation: common.OperationReplace, Style: map[string]string{"color": "red"}},
				{Selector: ".x", Operation: common.OperationAdd, Content: "<b>x</b>"},
				{Selector: "img", Operation: common.OperationRemove},
			}},
			max: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate(tt.max)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidPatch) {
				t.Fatalf("expected ErrInvalidPatch, got %v", err)
			}
			var ce *ChangeError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ChangeError, got %T", err)
			}
			if ce.Index != tt.wantIdx {
				t.Errorf("index = %d, want %d", ce.Index, tt.wantIdx)
			}
		})
	}
}

func TestDecodedChangeWithoutOperation(t *testing.T) {
	var p DocumentPatch
	data := `{"type":"style_update","changes":[{"selector":"h1","style":{"color":"red"}}]}`
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		t.Fatalf("unable to decode patch: %v", err)
	}
	err := p.Validate(0)
	var ce *ChangeError
	if !errors.As(err, &ce) || ce.Index != 0 {
		t.Fatalf("Validate() = %v, want change 0 rejected", err)
	}
	if !strings.Contains(ce.Reason, "missing operation") {
		t.Errorf("reason = %q", ce.Reason)
	}
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		in      string
		tag     string
		class   string
		wantErr bool
	}{
		{in: "p", tag: "p"},
		{in: "H1", tag: "h1"},
		{in: "p.note", tag: "p", class: "note"},
		{in: ".docx-Title_1", class: "docx-Title_1"},
		{in: " td ", tag: "td"},
		{in: "", wantErr: true},
		{in: ".", wantErr: true},
		{in: "p.a.b", wantErr: true},
		{in: "#id", wantErr: true},
		{in: "p:first-child", wantErr: true},
		{in: "p[style]", wantErr: true},
		{in: "div p", wantErr: true},
		{in: "*", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sel, err := parseSelector(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", sel)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sel.tag != tt.tag || sel.class != tt.class {
				t.Errorf("got %+v, want tag=%q class=%q", sel, tt.tag, tt.class)
			}
		})
	}
}

func TestChangeErrorMessage(t *testing.T) {
	err := &ChangeError{Index: 2, Reason: "add requires content"}
	if got, want := err.Error(), "invalid patch: change 2: add requires content"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	err = &ChangeError{Index: -1, Reason: "no changes"}
	if got, want := err.Error(), "invalid patch: no changes"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
