// Enumerations shared between conversion, patching and revision packages.
// String forms are part of the API surface (JSON) so they must not change.
package common

// Source document format accepted for conversion.
// ENUM(docx, rtf)
type SourceFormat int

func (f SourceFormat) Ext() string {
	return "." + f.String()
}

// Which converter produced the html.
// ENUM(primary, fallback)
type ConversionMethod int

// Severity of conversion warning.
// ENUM(info, warning, error)
type Severity int

// Kind of document patch.
// ENUM(style_update, content_update, formatting_update, image_update)
type PatchKind int

// Single change operation inside of a patch. Zero value is not a valid
// operation, so change without one is rejected.
// ENUM(_, replace, add, remove, modify)
type Operation int

// RequiresStyle reports whether change with this operation must carry style mapping.
func (o Operation) RequiresStyle() bool {
	return o == OperationReplace || o == OperationModify
}

// RequiresContent reports whether change with this operation must carry content.
func (o Operation) RequiresContent() bool {
	return o == OperationAdd
}

// What was recorded in revision.
// ENUM(patch, manual)
type RevisionKind int
