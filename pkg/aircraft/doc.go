// Package aircraft derives the read-only component model of a document:
// profiles, wings, fuselages, their segments and the wing component
// segments.
//
// Every segment maps (eta, xsi) in [0,1]x[0,1] to points on its surfaces.
// Eta runs span-wise from the inner to the outer section, xsi runs along
// the profile: leading to trailing edge on wing surfaces, once around the
// profile on fuselages. Segments are ruled between their two sections.
//
// Components and segments are addressed by 1-based index or by UID. Errors
// carry a status.Kind so callers can tell a bad index from a bad parameter.
package aircraft
