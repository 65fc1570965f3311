package store

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPinningStore_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pinning/pinFileToIPFS" {
			t.Errorf("Expected /pinning/pinFileToIPFS, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer jwt" {
			t.Errorf("Authorization = %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "art.png" {
			t.Errorf("Filename = %q", header.Filename)
		}
		if r.FormValue("pinataMetadata") == "" {
			t.Error("missing pinataMetadata")
		}
		w.Write([]byte(`{"IpfsHash":"QmTest","PinSize":4,"Timestamp":"2026-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	s, err := NewPinningStore(PinningConfig{APIURL: server.URL, JWT: "jwt"})
	if err != nil {
		t.Fatalf("NewPinningStore: %v", err)
	}
	cid, err := s.Upload(context.Background(), []byte("data"), Meta{Name: "art.png", SHA256: "abc"})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if cid != "QmTest" {
		t.Errorf("cid = %q; want QmTest", cid)
	}
}

func TestPinningStore_UploadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid token"}`))
	}))
	defer server.Close()

	s, _ := NewPinningStore(PinningConfig{APIURL: server.URL, JWT: "bad"})
	if _, err := s.Upload(context.Background(), []byte("data"), Meta{Name: "a"}); err == nil {
		t.Error("Expected error on 401")
	}
}

func TestPinningStore_Download(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ipfs/QmTest" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("data"))
	}))
	defer server.Close()

	s, _ := NewPinningStore(PinningConfig{GatewayURL: server.URL, JWT: "jwt"})
	data, err := s.Download(context.Background(), "QmTest")
	if err != nil || string(data) != "data" {
		t.Errorf("Download = %q, %v", data, err)
	}
	if _, err := s.Download(context.Background(), "QmMissing"); err == nil {
		t.Error("Expected error for missing CID")
	}
}

func TestNewPinningStore_MissingJWT(t *testing.T) {
	if _, err := NewPinningStore(PinningConfig{APIURL: "http://x"}); err == nil {
		t.Error("Expected error for missing JWT")
	}
}
