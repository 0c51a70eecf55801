// Package pinatatest provides an in-process fake of the Pinata pinning API.
package pinatatest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

const (
	APIKey    = "test-key"
	APISecret = "test-secret"
)

// Pin is one recorded pin request.
type Pin struct {
	Kind    string // "file" or "json"
	Name    string
	Content []byte
	CID     string
}

// Server records pins and answers with content-derived ids.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	pins    []Pin
	failing map[string]bool
}

func NewServer() *Server {
	s := &Server{failing: map[string]bool{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/pinning/pinFileToIPFS", s.handlePinFile)
	mux.HandleFunc("/pinning/pinJSONToIPFS", s.handlePinJSON)
	mux.HandleFunc("/data/testAuthentication", s.handleAuth)
	s.Server = httptest.NewServer(mux)
	return s
}

// FailOn makes every pin request with the given name fail with a 500.
func (s *Server) FailOn(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[name] = true
}

func (s *Server) Pins() []Pin {
	s.mu.Lock()
	defer s.mu.Unlock()
	pins := make([]Pin, len(s.pins))
	copy(pins, s.pins)
	return pins
}

// CIDFor is the id the server assigns to content.
func CIDFor(content []byte) string {
	sum := sha256.Sum256(content)
	return "Qm" + hex.EncodeToString(sum[:])[:44]
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("pinata_api_key") != APIKey || r.Header.Get("pinata_secret_api_key") != APISecret {
		http.Error(w, `{"error":"Invalid authentication credentials"}`, http.StatusUnauthorized)
		return false
	}
	return true
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	writeJSON(w, map[string]string{"message": "Congratulations! You are communicating with the Pinata API!"})
}

func (s *Server) handlePinFile(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := header.Filename
	var metadata struct {
		Name string `json:"name"`
	}
	if raw := r.FormValue("pinataMetadata"); raw != "" && json.Unmarshal([]byte(raw), &metadata) == nil && metadata.Name != "" {
		name = metadata.Name
	}
	s.record(w, "file", name, content)
}

func (s *Server) handlePinJSON(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(w, r) {
		return
	}
	var request struct {
		PinataContent  json.RawMessage `json:"pinataContent"`
		PinataMetadata struct {
			Name string `json:"name"`
		} `json:"pinataMetadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.record(w, "json", request.PinataMetadata.Name, request.PinataContent)
}

func (s *Server) record(w http.ResponseWriter, kind, name string, content []byte) {
	s.mu.Lock()
	failing := s.failing[name]
	s.mu.Unlock()
	if failing {
		http.Error(w, `{"error":"pinning failed"}`, http.StatusInternalServerError)
		return
	}

	cid := CIDFor(content)
	s.mu.Lock()
	s.pins = append(s.pins, Pin{Kind: kind, Name: name, Content: content, CID: cid})
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"IpfsHash":  cid,
		"PinSize":   len(content),
		"Timestamp": "2024-01-01T00:00:00.000Z",
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
