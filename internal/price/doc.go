// Package price converts catalog price text into canonical decimal values
// and renders them back for display.
//
// Normalize accepts whatever a catalog prints ("1 299,00 €", "12,99€",
// "129995" for a price whose cents are rendered as a superscript) and never
// fails: text it cannot read becomes zero, which the ranking stage's
// plausibility floor then discards.
package price
