// Package sanity compares the migration ledger with the files on disk.
//
// A migration history is sane when every recorded group still exists with
// the same content and every file has been migrated. Check stops at the first
// problem and CheckAll collects all of them; both report each problem as an
// *Error whose Kind says what went wrong:
//
//   - FileNoContainTag: a recorded tag was removed from its file
//   - FileQuerySetChanged: a recorded group was edited after it was applied
//   - FileNoExist: a recorded file was deleted or renamed
//   - FileNotMigrated: a file has no records at all (unless new files are ignored)
//
// Status produces the same information as a per-group report for display,
// without treating anything as an error.
package sanity
