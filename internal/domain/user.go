package domain

// User represents a registered identity in the system. The username is the
// identity: two users are the same entity iff their usernames are equal, and
// a username never changes after registration.
//
// Password is stored and compared as a plaintext string. This mirrors the
// credential model the registry started with and is a known weakness;
// deployments that need hardening must hash at the boundary and accept the
// changed comparison semantics.
type User struct {
	Username string
	Password string
	Name     string
}
