package password

import (
	"strings"
	"testing"
)

func testHasher(t *testing.T) *Argon2 {
	t.Helper()
	a, err := NewArgon2(Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	return a
}

func TestHashVerifyRoundTrip(t *testing.T) {
	a := testHasher(t)

	hash, err := a.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Errorf("hash not in PHC format: %s", hash)
	}

	ok, err := a.Verify("correct horse battery", hash)
	if err != nil || !ok {
		t.Errorf("Verify correct = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = a.Verify("wrong password", hash)
	if err != nil {
		t.Fatalf("Verify wrong: %v", err)
	}
	if ok {
		t.Error("wrong password verified")
	}
}

func TestHashProducesUniqueSalts(t *testing.T) {
	a := testHasher(t)

	h1, _ := a.Hash("same password!")
	h2, _ := a.Hash("same password!")
	if h1 == h2 {
		t.Error("two hashes of the same password are identical")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	a := testHasher(t)
	if _, err := a.Hash("short"); err == nil {
		t.Error("expected error for sub-minimum password")
	}
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	a := testHasher(t)

	for _, bad := range []string{
		"",
		"not a hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
	} {
		if _, err := a.Verify("whatever8", bad); err == nil {
			t.Errorf("Verify(%q) succeeded, want parse error", bad)
		}
	}
}

func TestNeedsUpgrade(t *testing.T) {
	weak, err := NewArgon2(Config{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}
	strong, err := NewArgon2(Config{Memory: 64 * 1024, Time: 3, Parallelism: 2, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}

	hash, _ := weak.Hash("correct horse battery")

	up, err := strong.NeedsUpgrade(hash)
	if err != nil || !up {
		t.Errorf("NeedsUpgrade weak hash = (%v, %v), want (true, nil)", up, err)
	}

	up, err = weak.NeedsUpgrade(hash)
	if err != nil || up {
		t.Errorf("NeedsUpgrade current hash = (%v, %v), want (false, nil)", up, err)
	}
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"low memory", Config{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"zero time", Config{Memory: 8192, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"zero parallelism", Config{Memory: 8192, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 32}},
		{"short salt", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 32}},
		{"short key", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewArgon2(tc.cfg); err == nil {
				t.Error("expected config error")
			}
		})
	}
}

func TestConcurrentHashingUnderGate(t *testing.T) {
	a, err := NewArgon2(Config{
		Memory:        8 * 1024,
		Time:          1,
		Parallelism:   1,
		SaltLength:    16,
		KeyLength:     32,
		MaxConcurrent: 2,
	})
	if err != nil {
		t.Fatalf("NewArgon2: %v", err)
	}

	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			_, err := a.Hash("concurrent password!")
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Errorf("Hash: %v", err)
		}
	}
}
