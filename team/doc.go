// Package team manages team and teammate lifecycle and routes messages to the
// right per-teammate mailbox.
//
// A Directory owns the mapping of team name to roster. Team names are unique
// across the directory and teammate names unique within a team. Registry
// mutations (create, delete, register) are serialized against concurrent
// lookups so no caller ever observes a half-created or half-deleted team.
//
// Each registered teammate gets a persistent mailbox file under the directory
// root:
//
//	{root}/{team}/{teammate}.jsonl
//
// Deleting a team removes the team, its teammates, and their mailbox files;
// the name becomes re-creatable afterward.
package team
