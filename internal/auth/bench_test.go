package auth

import (
	"testing"
	"time"
)

// Password hashing is intentionally slow.

func BenchmarkHashPassword(b *testing.B) {
	for b.Loop() {
		HashPassword("correct-horse-battery-staple") //nolint:errcheck // benchmark
	}
}

func BenchmarkVerifyPassword(b *testing.B) {
	hash, err := HashPassword("correct-horse-battery-staple")
	if err != nil {
		b.Fatalf("HashPassword: %v", err)
	}

	for b.Loop() {
		VerifyPassword("correct-horse-battery-staple", hash) //nolint:errcheck // benchmark
	}
}

// Token verification runs on every authenticated request.

func BenchmarkIssueToken(b *testing.B) {
	user := &User{ID: "usr-bench", Email: "bench@example.com"}

	for b.Loop() {
		IssueToken(user, testSecret, 30*time.Minute) //nolint:errcheck // benchmark
	}
}

func BenchmarkVerifyToken(b *testing.B) {
	token, _, err := IssueToken(&User{ID: "usr-bench"}, testSecret, 30*time.Minute)
	if err != nil {
		b.Fatalf("IssueToken: %v", err)
	}

	for b.Loop() {
		VerifyToken(token, testSecret) //nolint:errcheck // benchmark
	}
}
