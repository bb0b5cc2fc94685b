package services

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// fakeRecorder captures metric events for assertions.
type fakeRecorder struct {
	mu            sync.Mutex
	logins        map[string]int
	registrations map[string]int
	issued        int
	rejected      []string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{logins: map[string]int{}, registrations: map[string]int{}}
}

func (r *fakeRecorder) RecordLogin(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins[outcome]++
}

func (r *fakeRecorder) RecordRegistration(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations[outcome]++
}

func (r *fakeRecorder) RecordTokenIssued() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
}

func (r *fakeRecorder) RecordTokenRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, reason)
}

func (r *fakeRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}

// countingHasher records how many verifications ran.
type countingHasher struct {
	PasswordHasher
	mu       sync.Mutex
	verified int
}

func (h *countingHasher) Verify(plaintext, hash string) bool {
	h.mu.Lock()
	h.verified++
	h.mu.Unlock()
	return h.PasswordHasher.Verify(plaintext, hash)
}

func testHasher() PasswordHasher {
	return NewBcryptHasher(bcrypt.MinCost)
}

const testSecret = "0123456789abcdef0123456789abcdef0123456789abcdef"
