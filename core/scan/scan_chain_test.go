package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medledger/core/block"
	"medledger/core/genesis"
	"medledger/types/ids"
)

func buildChain(records ...[3]string) []block.Block {
	chain := []block.Block{genesis.CreateGenesisBlock()}
	for _, r := range records {
		tail := chain[len(chain)-1]
		chain = append(chain, block.NewRecordBlock(int64(len(chain)), r[0], r[1], r[2], tail.Hash))
	}
	return chain
}

func threeRecords() []block.Block {
	return buildChain(
		[3]string{"P001", "D001", "Fever|Paracetamol"},
		[3]string{"P002", "D001", "Cold|Amoxicillin"},
		[3]string{"P001", "D002", "Diabetes|Metformin"},
	)
}

func TestVerifyEmptyChain(t *testing.T) {
	res := Verify(nil)
	assert.True(t, res.Valid)
	assert.Equal(t, -1, res.BlockIndex)
	assert.Empty(t, DetectTampering(nil))
}

func TestVerifyValidChain(t *testing.T) {
	chain := threeRecords()
	res := Verify(chain)
	assert.True(t, res.Valid)
	assert.Equal(t, 4, res.Blocks)
	assert.Empty(t, DetectTampering(chain))
}

func TestVerifyIsIdempotent(t *testing.T) {
	chain := threeRecords()
	assert.Equal(t, Verify(chain), Verify(chain))
}

func TestTreatmentEditIsHashMismatch(t *testing.T) {
	chain := threeRecords()
	chain[2].Treatment = "Cold|Placebo"

	res := Verify(chain)
	assert.False(t, res.Valid)
	assert.Equal(t, 2, res.BlockIndex)
	assert.Equal(t, ReasonHash, res.Reason)

	findings := DetectTampering(chain)
	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].BlockIndex)
	assert.Equal(t, "Hash mismatch", findings[0].Reason)
	assert.Equal(t, chain[2].Hash, findings[0].Actual)
	assert.Equal(t, chain[2].ComputeHash(), findings[0].Expected)
}

func TestPreviousHashEditReportsBothFindings(t *testing.T) {
	chain := threeRecords()
	chain[1].PreviousHash = ids.Digest("unrelated")

	res := Verify(chain)
	assert.False(t, res.Valid)
	assert.Equal(t, 1, res.BlockIndex)
	assert.Equal(t, ReasonPreviousHash, res.Reason)

	findings := DetectTampering(chain)
	require.Len(t, findings, 2)
	assert.Equal(t, Finding{BlockIndex: 1, Reason: ReasonHash, Expected: chain[1].ComputeHash(), Actual: chain[1].Hash}, findings[0])
	assert.Equal(t, Finding{BlockIndex: 1, Reason: "Previous hash mismatch", Expected: chain[0].Hash, Actual: chain[1].PreviousHash}, findings[1])
}

func TestRehashedBlockBreaksSuccessorLink(t *testing.T) {
	chain := threeRecords()
	// A forger who recomputes the edited block's hash still breaks the next link.
	chain[1].Treatment = "Fever|Nothing"
	chain[1].Hash = chain[1].ComputeHash()

	res := Verify(chain)
	assert.False(t, res.Valid)
	assert.Equal(t, 2, res.BlockIndex)
	assert.Equal(t, ReasonPreviousHash, res.Reason)

	findings := DetectTampering(chain)
	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].BlockIndex)
	assert.Equal(t, ReasonPreviousHash, findings[0].Reason)
}

func TestDetectTamperingDoesNotShortCircuit(t *testing.T) {
	chain := threeRecords()
	chain[1].PatientID = "P999"
	chain[3].DoctorID = "D999"

	findings := DetectTampering(chain)
	require.Len(t, findings, 2)
	assert.Equal(t, 1, findings[0].BlockIndex)
	assert.Equal(t, 3, findings[1].BlockIndex)
}

func TestGenesisSentinelChecked(t *testing.T) {
	chain := threeRecords()
	chain[0].PreviousHash = ids.Digest("x")

	res := Verify(chain)
	assert.False(t, res.Valid)
	assert.Equal(t, 0, res.BlockIndex)
	assert.Equal(t, ReasonGenesis, res.Reason)
}

func TestStoredValidityFlagIsIgnored(t *testing.T) {
	chain := threeRecords()
	chain[1].IsValid = false
	assert.True(t, Verify(chain).Valid)

	chain = threeRecords()
	chain[1].Treatment = "tampered"
	chain[1].IsValid = true
	assert.False(t, Verify(chain).Valid)
}
