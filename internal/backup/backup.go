// Package backup moves a persisted session between machines as a
// single compressed archive: 8-byte magic, 4-byte little-endian
// uncompressed size, then one lz4 block of JSON.
package backup

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pierrec/lz4/v4"

	"github.com/lotas/lernbruecke/internal/store"
	"github.com/lotas/lernbruecke/internal/types"
)

var magic = []byte("lbses10\x00")

const headerSize = 12 // 8 magic + 4 size

type archive struct {
	ExportedAt     time.Time     `json:"exportedAt"`
	User           *types.User   `json:"user,omitempty"`
	Cookie         string        `json:"cookie,omitempty"`
	LastURL        string        `json:"lastUrl,omitempty"`
	OrganizationID string        `json:"organizationId,omitempty"`
	Visits         []types.Visit `json:"visits,omitempty"`
}

// Export serializes the session (and up to 200 recent visits, when a
// history is given) into the archive format.
func Export(s store.Session, h store.History) ([]byte, error) {
	var a archive
	a.ExportedAt = time.Now().UTC()
	if u, ok := s.User(); ok {
		a.User = &u
	}
	a.Cookie, _ = s.Cookie()
	a.LastURL, _ = s.LastURL()
	a.OrganizationID, _ = s.OrganizationID()
	if h != nil {
		a.Visits = h.RecentVisits(200)
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal archive: %w", err)
	}

	compressed := make([]byte, lz4.CompressBlockBound(len(payload)))
	n, err := lz4.CompressBlock(payload, compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("compress archive: %w", err)
	}
	if n == 0 {
		// Incompressible payload: lz4 reports 0, store the raw
		// bytes. Import detects this case by size == body length.
		compressed = payload
		n = len(payload)
	}

	out := make([]byte, headerSize+n)
	copy(out, magic)
	binary.LittleEndian.PutUint32(out[8:12], uint32(len(payload)))
	copy(out[headerSize:], compressed[:n])
	return out, nil
}

// Import decodes an archive and writes its fields into the store. An
// empty field in the archive leaves the corresponding stored field
// untouched.
func Import(data []byte, s store.Session, h store.History) error {
	payload, err := decode(data)
	if err != nil {
		return err
	}

	var a archive
	if err := json.Unmarshal(payload, &a); err != nil {
		return fmt.Errorf("parse archive: %w", err)
	}

	if a.User != nil {
		s.SaveUser(*a.User)
	}
	if a.Cookie != "" {
		s.SaveCookie(a.Cookie)
	}
	if a.LastURL != "" {
		s.SaveLastURL(a.LastURL)
	}
	if a.OrganizationID != "" {
		s.SaveOrganizationID(a.OrganizationID)
	}
	if h != nil {
		// Visits are newest-first in the archive; replay oldest-first.
		for i := len(a.Visits) - 1; i >= 0; i-- {
			h.RecordVisit(a.Visits[i].URL, a.Visits[i].VisitedAt)
		}
	}
	return nil
}

func decode(data []byte) ([]byte, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("archive too short (%d bytes)", len(data))
	}
	if !bytes.Equal(data[:8], magic) {
		return nil, fmt.Errorf("not a session archive")
	}

	size := binary.LittleEndian.Uint32(data[8:12])
	body := data[headerSize:]

	// Raw fallback written by Export for incompressible payloads.
	if int(size) == len(body) && json.Valid(body) {
		return body, nil
	}

	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(body, dst)
	if err != nil {
		return nil, fmt.Errorf("decompress archive: %w", err)
	}
	return dst[:n], nil
}
