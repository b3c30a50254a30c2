// ABOUTME: Tests for the session verifier's nil-on-failure contract
// ABOUTME: Valid, tampered, and expired credentials all collapse correctly

package auth

import (
	"strings"
	"testing"
	"time"
)

func TestVerifier_ValidCredential(t *testing.T) {
	codec, _ := NewJWTCodec(testSecret)
	verifier := NewVerifier(codec)

	credential, err := codec.Issue("user-42", "Grace", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	principal := verifier.Verify(credential)
	if principal == nil {
		t.Fatal("Verify() = nil, want principal")
	}
	if principal.ID != "user-42" {
		t.Errorf("Verify() ID = %q, want %q", principal.ID, "user-42")
	}
	if principal.Name != "Grace" {
		t.Errorf("Verify() Name = %q, want %q", principal.Name, "Grace")
	}
}

func TestVerifier_NilOnFailure(t *testing.T) {
	codec, _ := NewJWTCodec(testSecret)
	otherCodec, _ := NewJWTCodec([]byte("a-different-32-byte-test-secret!"))
	verifier := NewVerifier(codec)

	expired, _ := codec.Issue("user-42", "Grace", -time.Minute)
	foreign, _ := otherCodec.Issue("user-42", "Grace", time.Hour)

	tests := []struct {
		name       string
		credential string
	}{
		{name: "empty", credential: ""},
		{name: "garbage", credential: "nonsense"},
		{name: "expired", credential: expired},
		{name: "wrong key", credential: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p := verifier.Verify(tt.credential); p != nil {
				t.Errorf("Verify(%s) = %+v, want nil", tt.name, p)
			}
		})
	}
}

func TestVerifier_TamperedCredential(t *testing.T) {
	codec, _ := NewJWTCodec(testSecret)
	verifier := NewVerifier(codec)

	credential, _ := codec.Issue("user-42", "Grace", time.Hour)
	parts := strings.Split(credential, ".")

	for i := 0; i < len(parts[1]); i++ {
		altered := []byte(parts[1])
		if altered[i] == 'x' {
			altered[i] = 'y'
		} else {
			altered[i] = 'x'
		}
		if string(altered) == parts[1] {
			continue
		}

		tampered := parts[0] + "." + string(altered) + "." + parts[2]
		if p := verifier.Verify(tampered); p != nil {
			t.Errorf("Verify() accepted credential with payload byte %d altered", i)
		}
	}
}
