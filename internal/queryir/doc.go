// Package queryir holds the intermediate representation produced by the
// query classifier and consumed by the SQL fragment compiler.
//
// ARCHITECTURE:
//
//	[query text] → querylang.Tokenize → querylang.Parse → [Query IR] → querysql.Compile
//
// A Query carries two PredicateSets with identical shape: Affirmed holds
// clauses written as key:value, Negated holds clauses written as -key:value.
// The compiler decides per field how each polarity turns into SQL; the IR
// itself carries no SQL.
//
// FIELDS:
//
// Known fields form a closed enum (Field). A key the classifier cannot map
// is kept as a DynamicValue so that the information is not lost, but no
// compiler rule exists for it:
//
//	FieldRef{Known: FieldAuthor}                 // author:foo
//	FieldRef{Known: FieldDynamic, Name: "color"} // color:red
//
// Values are created fresh for every parse and are never shared, so a
// Query may be handed to another goroutine without copying.
package queryir
