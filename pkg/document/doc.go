// Package document defines the parsed aircraft document: profiles, wings
// and fuselages described by sections, positionings and segments. A
// Document is never mutated once it has been added to a Store; the
// aircraft model derives every geometric view from it on demand.
package document
