// Package schema loads a configuration schema into an ordered symbol table.
//
// Schemas are written in CUE or HCL rather than Kconfig syntax. Both
// front-ends produce the same declarations: a named symbol with a type,
// an optional prompt, help text, visibility and dependency conditions, and
// an ordered list of guarded defaults. Menus group symbols and contribute
// their conditions to everything declared inside them.
//
// Conditions and expression defaults use the language of package expr and
// are interned in the Schema's Pool, so a condition shared by many symbols
// is parsed and evaluated once.
package schema
