package block

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"medledger/types/ids"
)

func TestCanonicalStringOrder(t *testing.T) {
	got := CanonicalString(1, "P001", "D001", "Fever|Paracetamol", ids.ZeroHash, 1700000000.25)
	want := "1|P001|D001|Fever|Paracetamol|" + ids.ZeroHash + "|1700000000.25"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		1700000000:        "1700000000.0",
		1700000000.5:      "1700000000.5",
		1700000123.456789: "1700000123.456789",
	}
	for in, want := range cases {
		if got := FormatTimestamp(in); got != want {
			t.Errorf("FormatTimestamp(%v): expected %s, got %s", in, want, got)
		}
	}
}

func TestNewRecordBlockIsSealed(t *testing.T) {
	b := NewRecordBlock(3, "P001", "D001", "Cold|Amoxicillin", ids.Digest("prev"))
	if b.Hash != b.ComputeHash() {
		t.Fatalf("hash does not match recomputation")
	}
	if !b.HashMatches() {
		t.Errorf("expected HashMatches to be true")
	}
	if b.BlockType != TypeMedicalRecord || !b.IsValid || b.Index != 3 {
		t.Errorf("unexpected block header: %+v", b)
	}
	if b.TimeReadable == "" || b.Date == "" {
		t.Errorf("expected readable timestamps, got %q / %q", b.TimeReadable, b.Date)
	}
}

func TestAnyFieldChangeChangesHash(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	orig := New(1, "P001", "D001", "Fever|Paracetamol", ids.ZeroHash, TypeMedicalRecord, at)

	mutations := map[string]func(b *Block){
		"index":         func(b *Block) { b.Index = 2 },
		"patient_id":    func(b *Block) { b.PatientID = "P002" },
		"doctor_id":     func(b *Block) { b.DoctorID = "D002" },
		"treatment":     func(b *Block) { b.Treatment = "Fever|Ibuprofen" },
		"previous_hash": func(b *Block) { b.PreviousHash = ids.Digest("other") },
		"timestamp":     func(b *Block) { b.Timestamp += 0.001 },
	}
	for name, mutate := range mutations {
		b := orig
		mutate(&b)
		if b.HashMatches() {
			t.Errorf("mutating %s did not invalidate the hash", name)
		}
	}

	// Display-only fields are outside the digest.
	b := orig
	b.TimeReadable = "whenever"
	b.IsValid = false
	if !b.HashMatches() {
		t.Errorf("display fields must not affect the hash")
	}
}

func TestEncodeChainFieldOrder(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	chain := []Block{New(0, "GENESIS", "SYSTEM", "Blockchain initialized", ids.ZeroHash, TypeGenesis, at)}
	data, err := EncodeChain(chain)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	order := []string{`"index"`, `"patient_id"`, `"doctor_id"`, `"treatment"`, `"timestamp"`,
		`"time_readable"`, `"date"`, `"previous_hash"`, `"hash"`, `"is_valid"`, `"block_type"`}
	last := -1
	for _, key := range order {
		i := bytes.Index(data, []byte(key))
		if i <= last {
			t.Fatalf("field %s out of order in %s", key, data)
		}
		last = i
	}
	if !strings.Contains(string(data), "\n        \"index\"") {
		t.Errorf("expected 4-space indentation, got %s", data)
	}

	out, err := DecodeChain(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || !out[0].HashMatches() {
		t.Errorf("decoded chain does not verify: %+v", out)
	}
}

func TestDecodeChainEdgeCases(t *testing.T) {
	chain, err := DecodeChain([]byte("null"))
	if err != nil || chain == nil || len(chain) != 0 {
		t.Errorf("expected empty chain for null, got %v, %v", chain, err)
	}
	if _, err := DecodeChain([]byte("{not json")); err == nil {
		t.Errorf("expected error for malformed data")
	}
	empty, err := EncodeChain(nil)
	if err != nil || strings.TrimSpace(string(empty)) != "[]" {
		t.Errorf("expected [] for nil chain, got %q, %v", empty, err)
	}
}

// Artifacts written by other implementations carry float timestamps with
// shortest-repr formatting; they must verify after a round trip.
func TestForeignArtifactVerifies(t *testing.T) {
	ts := 1718000000.123456
	prev := ids.ZeroHash
	h := ids.Digest("1|P001|D001|Fever|Paracetamol|" + prev + "|1718000000.123456")
	raw := `[{"index": 1, "patient_id": "P001", "doctor_id": "D001", "treatment": "Fever|Paracetamol",
	"timestamp": 1718000000.123456, "time_readable": "x", "previous_hash": "` + prev + `",
	"hash": "` + h + `", "is_valid": true, "block_type": "MEDICAL_RECORD"}]`
	chain, err := DecodeChain([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if chain[0].Timestamp != ts || !chain[0].HashMatches() {
		t.Errorf("expected foreign block to verify, got %+v", chain[0])
	}
}
