// Package session keeps one authoritative record of who is signed in (session
// store, auth manager, role-aware routing) plus HTTP helpers for login,
// registration, and profile editing.
//
// Session lifecycle:
//   - The Store holds a single Snapshot moving through uninitialized, loading,
//     anonymous, and authenticated. Snapshots are all-or-nothing: readers see
//     either a full session (identity plus matching profile) or none, never a
//     torn state.
//   - The Manager is the store's only writer. It bootstraps from the identity
//     provider on Start, then applies provider change events one at a time in
//     the order they arrived, so a stale sign-in can never overwrite a later
//     sign-out.
//
// Role-gated sign in:
//   - SignIn verifies credentials, loads the profile, and compares the profile
//     role against the login form the user came through. On mismatch the
//     provider session is revoked and the store lands on anonymous; students
//     cannot enter through the teacher door.
//
// Providers:
//   - IdentityProvider abstracts credential verification, session restoration,
//     revocation, and change notification. provider/local implements it on top
//     of the accounts repository with bcrypt hashes and a signed session token
//     kept in a TokenStore.
package session
