package utils

import "testing"

func TestPasswordHashRoundTrip(t *testing.T) {
    t.Parallel()

    hashed, err := HashPassword("s3cret-pass")
    if err != nil {
        t.Fatalf("hash failed: %v", err)
    }
    if hashed == "s3cret-pass" {
        t.Fatal("password must not be stored in plain text")
    }
    if !CheckPassword(hashed, "s3cret-pass") {
        t.Fatal("correct password rejected")
    }
    if CheckPassword(hashed, "wrong-pass") {
        t.Fatal("wrong password accepted")
    }
}
