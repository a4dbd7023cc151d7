package block

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"medledger/types/ids"
)

// BlockType distinguishes the chain's sentinel first entry from record entries.
type BlockType string

const (
	TypeGenesis       BlockType = "GENESIS"
	TypeMedicalRecord BlockType = "MEDICAL_RECORD"
)

const (
	// ReadableLayout matches the C ctime() rendering, e.g. "Mon Jan  2 15:04:05 2006".
	ReadableLayout = time.ANSIC
	DateLayout     = "2006-01-02 15:04:05"
)

// Block is one ledger entry. Field order is the persisted field order.
type Block struct {
	Index        int64     `json:"index"`         // Position in the chain (genesis = 0)
	PatientID    string    `json:"patient_id"`    // Opaque patient identifier
	DoctorID     string    `json:"doctor_id"`     // Opaque doctor identifier
	Treatment    string    `json:"treatment"`     // Caller-defined payload, e.g. "Fever|Paracetamol"
	Timestamp    float64   `json:"timestamp"`     // Seconds since epoch
	TimeReadable string    `json:"time_readable"` // ctime rendering of Timestamp
	Date         string    `json:"date,omitempty"`
	PreviousHash string    `json:"previous_hash"` // Hash of the prior block
	Hash         string    `json:"hash"`          // Digest over the canonical encoding
	IsValid      bool      `json:"is_valid"`      // Display hint only, never consulted by verification
	BlockType    BlockType `json:"block_type"`
}

// EpochSeconds converts t to fractional seconds since the Unix epoch.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// TimeOf converts fractional epoch seconds back to a local time.Time.
func TimeOf(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// FormatTimestamp renders ts as the shortest round-trip decimal. Integral
// values keep a trailing ".0" so that float timestamps always hash the same
// way regardless of which writer produced the artifact.
func FormatTimestamp(ts float64) string {
	s := strconv.FormatFloat(ts, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// CanonicalString joins the hashed fields with '|' in their fixed order.
func CanonicalString(index int64, patientID, doctorID, treatment, previousHash string, ts float64) string {
	return fmt.Sprintf("%d|%s|%s|%s|%s|%s", index, patientID, doctorID, treatment, previousHash, FormatTimestamp(ts))
}

// Canonical returns the canonical encoding of b's hashed fields.
func (b *Block) Canonical() string {
	return CanonicalString(b.Index, b.PatientID, b.DoctorID, b.Treatment, b.PreviousHash, b.Timestamp)
}

// ComputeHash recomputes the digest from b's own fields, ignoring b.Hash.
func (b *Block) ComputeHash() string {
	return ids.Digest(b.Canonical())
}

// HashMatches reports whether the stored hash equals the recomputed one.
func (b *Block) HashMatches() bool {
	return b.Hash == b.ComputeHash()
}

// New builds a sealed block created at the given time.
func New(index int64, patientID, doctorID, treatment, previousHash string, typ BlockType, at time.Time) Block {
	ts := EpochSeconds(at)
	local := TimeOf(ts)
	b := Block{
		Index:        index,
		PatientID:    patientID,
		DoctorID:     doctorID,
		Treatment:    treatment,
		Timestamp:    ts,
		TimeReadable: local.Format(ReadableLayout),
		Date:         local.Format(DateLayout),
		PreviousHash: previousHash,
		IsValid:      true,
		BlockType:    typ,
	}
	b.Hash = b.ComputeHash()
	return b
}

// NewRecordBlock builds a medical-record block stamped with the current time.
func NewRecordBlock(index int64, patientID, doctorID, treatment, previousHash string) Block {
	return New(index, patientID, doctorID, treatment, previousHash, TypeMedicalRecord, time.Now())
}

// Serialize encodes Block into JSON
func (b *Block) Serialize() ([]byte, error) {
	return json.Marshal(b)
}

// Deserialize decodes JSON into Block
func Deserialize(data []byte) (*Block, error) {
	var b Block
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// EncodeChain renders the whole chain as an indented JSON array.
func EncodeChain(chain []Block) ([]byte, error) {
	if chain == nil {
		chain = []Block{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(chain); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeChain parses a persisted chain. A JSON null decodes to an empty chain.
func DecodeChain(data []byte) ([]Block, error) {
	var chain []Block
	if err := json.Unmarshal(data, &chain); err != nil {
		return nil, err
	}
	if chain == nil {
		chain = []Block{}
	}
	return chain, nil
}
