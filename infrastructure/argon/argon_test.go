package argon

import (
	"errors"
	"strings"
	"testing"
)

func TestCreateAndCompare(t *testing.T) {
	hash, err := CreateHash("secret-pass", DefaultParams)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$") {
		t.Fatalf("unexpected hash prefix: %s", hash)
	}
	ok, err := ComparePasswordAndHash("secret-pass", hash)
	if err != nil {
		t.Fatalf("compare hash: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to match")
	}

	ok, err = ComparePasswordAndHash("wrong", hash)
	if err != nil {
		t.Fatalf("compare hash wrong: %v", err)
	}
	if ok {
		t.Fatalf("expected password mismatch")
	}
}

func TestCreateHashRejectsBlank(t *testing.T) {
	if _, err := CreateHash("   ", nil); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("expected ErrPasswordRequired, got %v", err)
	}
}

func TestCompareRejectsMalformedHash(t *testing.T) {
	cases := []struct {
		hash string
		want error
	}{
		{hash: "plain", want: ErrInvalidHash},
		{hash: "$bcrypt$v=19$m=1,t=1,p=1$a$b", want: ErrInvalidHash},
		{hash: "$argon2id$v=16$m=1,t=1,p=1$YQ$Yg", want: ErrIncompatibleVersion},
	}
	for _, tc := range cases {
		if _, err := ComparePasswordAndHash("x", tc.hash); !errors.Is(err, tc.want) {
			t.Fatalf("hash %q: expected %v, got %v", tc.hash, tc.want, err)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := &Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	hash, err := CreateHash("secret-pass", weak)
	if err != nil {
		t.Fatalf("create hash: %v", err)
	}
	if !NeedsRehash(hash, DefaultParams) {
		t.Fatalf("expected weak hash to need rehash")
	}
	if NeedsRehash(hash, weak) {
		t.Fatalf("hash made with same params should not need rehash")
	}
}
