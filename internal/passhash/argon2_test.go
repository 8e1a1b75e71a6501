package passhash

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$") {
		t.Errorf("unexpected hash format: %s", encoded)
	}

	ok, err := Verify(encoded, "pw")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Error("correct password did not verify")
	}

	ok, err = Verify(encoded, "wrong")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Error("wrong password verified")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password must differ")
	}
}

func TestVerifyMalformed(t *testing.T) {
	for _, encoded := range []string{"", "not-a-hash", "$argon2id$v=19$m=x$salt$hash"} {
		if ok, err := Verify(encoded, "pw"); err == nil && ok {
			t.Errorf("malformed hash %q verified", encoded)
		}
	}
}
