// Package course models one course export in the legacy "parsed" JSON format:
// the course record and the pages, files and embedded media it owns.
//
// Relations between entities are expressed by uid. Nothing in this package
// resolves them; see package sitetree for the uid to path table.
package course
