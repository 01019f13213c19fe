package stamper

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestGenerateSignature(t *testing.T) {
	h := NewHMACSignature("client", "secret")
	date := time.Date(2026, 3, 1, 10, 0, 0, 0, time.FixedZone("WIB", 7*3600))

	auth, dateHeader, err := h.GenerateSignature(http.MethodPost, "https://stamper.local/v1/stamp?x=1", date)
	if err != nil {
		t.Fatalf("GenerateSignature() error = %v", err)
	}
	if dateHeader != "Sun, 01 Mar 2026 03:00:00 GMT" {
		t.Fatalf("unexpected date header %q", dateHeader)
	}

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("date: " + dateHeader + "\nPOST /v1/stamp?x=1 HTTP/1.1"))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !strings.Contains(auth, `signature="`+want+`"`) {
		t.Fatalf("unexpected authorization %q", auth)
	}
	if !strings.HasPrefix(auth, `hmac username="client", algorithm="hmac-sha256"`) {
		t.Fatalf("unexpected authorization prefix %q", auth)
	}
}

func TestSignRequestSetsHeaders(t *testing.T) {
	h := NewHMACSignature("client", "secret")
	fixed := time.Date(2026, 3, 1, 3, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return fixed }

	req, _ := http.NewRequest(http.MethodPost, "https://stamper.local/stamp", nil)
	if err := h.SignRequest(req); err != nil {
		t.Fatalf("SignRequest() error = %v", err)
	}
	if req.Header.Get("Date") != fixed.Format(http.TimeFormat) {
		t.Fatalf("unexpected date %q", req.Header.Get("Date"))
	}
	if req.Header.Get("Authorization") == "" {
		t.Fatalf("expected authorization header")
	}
}
