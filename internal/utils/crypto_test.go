package utils

import "testing"

func TestCipherRoundTrip(t *testing.T) {
    c := NewCipher("test-secret")
    enc, err := c.Encrypt("123456")
    if err != nil {
        t.Fatalf("encrypt: %v", err)
    }
    if enc == "123456" {
        t.Fatal("ciphertext equals plaintext")
    }
    dec, err := c.Decrypt(enc)
    if err != nil {
        t.Fatalf("decrypt: %v", err)
    }
    if dec != "123456" {
        t.Fatalf("round trip mismatch: %q", dec)
    }
}

func TestCipherNoncesDiffer(t *testing.T) {
    c := NewCipher("test-secret")
    a, err := c.Encrypt("123456")
    if err != nil {
        t.Fatalf("encrypt: %v", err)
    }
    b, err := c.Encrypt("123456")
    if err != nil {
        t.Fatalf("encrypt: %v", err)
    }
    if a == b {
        t.Fatal("same plaintext must not produce the same ciphertext twice")
    }
}

func TestCipherWrongKeyFails(t *testing.T) {
    enc, err := NewCipher("secret-a").Encrypt("123456")
    if err != nil {
        t.Fatalf("encrypt: %v", err)
    }
    if _, err := NewCipher("secret-b").Decrypt(enc); err == nil {
        t.Fatal("decryption with the wrong key must fail")
    }
}

func TestCipherRejectsGarbage(t *testing.T) {
    c := NewCipher("test-secret")
    if _, err := c.Decrypt("not base64!!"); err == nil {
        t.Fatal("expected base64 error")
    }
    if _, err := c.Decrypt("AAAA"); err == nil {
        t.Fatal("expected short ciphertext error")
    }
}

func TestSHA256HexStable(t *testing.T) {
    a := SHA256Hex("student_1_123456")
    if len(a) != 64 {
        t.Fatalf("unexpected digest length %d", len(a))
    }
    if a != SHA256Hex("student_1_123456") {
        t.Fatal("digest must be deterministic")
    }
    if a == SHA256Hex("student_2_123456") {
        t.Fatal("different inputs must not collide")
    }
}

func TestGenerateCodeLengthAndAlphabet(t *testing.T) {
    code, err := GenerateCode(12)
    if err != nil {
        t.Fatalf("generate: %v", err)
    }
    if len(code) != 12 {
        t.Fatalf("unexpected length %d", len(code))
    }
    for _, r := range code {
        if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
            t.Fatalf("unexpected character %q in %q", r, code)
        }
    }
}

func TestPasswordHashRoundTrip(t *testing.T) {
    h, err := HashPassword("hunter22")
    if err != nil {
        t.Fatalf("hash: %v", err)
    }
    if !CheckPassword(h, "hunter22") {
        t.Fatal("correct password rejected")
    }
    if CheckPassword(h, "hunter23") {
        t.Fatal("wrong password accepted")
    }
}
