// Package present turns domain records into view models.
// Every function here is pure: same input, same output, no I/O.
package present

// Variant is the visual style a badge, bar or card is drawn with
type Variant string

const (
	VariantDefault Variant = "default"
	VariantSuccess Variant = "success"
	VariantWarning Variant = "warning"
	VariantDanger  Variant = "danger"
	VariantOutline Variant = "outline"
)

// Class returns the CSS class for the variant
func (v Variant) Class() string {
	if v == "" {
		return "variant-default"
	}
	return "variant-" + string(v)
}
