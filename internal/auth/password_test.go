package auth

import "testing"

func TestHashPassword_RoundTrip(t *testing.T) {
	t.Parallel()

	const password = "correct horse battery staple"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == password {
		t.Fatal("hash must not equal the plaintext password")
	}
	if !CheckPassword(hash, password) {
		t.Fatal("expected password to verify against its own hash")
	}
}

func TestCheckPassword_WrongPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("right")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if CheckPassword(hash, "wrong") {
		t.Fatal("expected mismatch for wrong password")
	}
}

func TestCheckPassword_MalformedDigest(t *testing.T) {
	t.Parallel()

	if CheckPassword("not-a-bcrypt-digest", "anything") {
		t.Fatal("expected malformed digest to fail verification")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	t.Parallel()

	first, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	second, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct salts to produce distinct digests")
	}
}
