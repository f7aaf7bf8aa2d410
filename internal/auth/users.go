// Package auth holds the user table and the signed session tokens the web
// server hands out after login.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"slices"
	"strings"
)

// ErrNoUsers is returned when the server has nobody to authenticate.
var ErrNoUsers = errors.New("no users configured; set server.users or PHRASEBOOK_USERS")

// Users maps user names to passwords.
type Users map[string]string

// ParseUsers reads "alice:pass1,bob:pass2". Entries without a colon or with
// an empty name are skipped; later duplicates win.
func ParseUsers(raw string) Users {
	users := make(Users)
	for _, entry := range strings.Split(raw, ",") {
		name, password, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		users[name] = strings.TrimSpace(password)
	}
	return users
}

// Check reports whether password is correct for name.
func (u Users) Check(name, password string) bool {
	want, ok := u[strings.TrimSpace(name)]
	if !ok {
		// Compare anyway so unknown names take the same time.
		want = "\x00"
	}
	a := sha256.Sum256([]byte(password))
	b := sha256.Sum256([]byte(want))
	return subtle.ConstantTimeCompare(a[:], b[:]) == 1 && ok
}

// Names returns the configured user names, sorted.
func (u Users) Names() []string {
	names := make([]string, 0, len(u))
	for name := range u {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
