// Package errors provides the classified errors used across coursebuilder.
//
// A category decides the CLI exit code and whether a failure aborts one
// course or the whole command. Sync and network failures are transient, so a
// scheduled mirror reports them and tries again on the next tick.
//
//	err := errors.IntegrityError("page parent not found").
//		WithContext("uid", page.UID).
//		WithContext("parent_uid", page.ParentUID).
//		Build()
package errors
