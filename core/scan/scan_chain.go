package scan

import (
	"medledger/core/block"
	"medledger/types/ids"
)

const (
	ReasonGenesis      = "Genesis previous hash mismatch"
	ReasonPreviousHash = "Previous hash mismatch"
	ReasonHash         = "Hash mismatch"
)

// Result is the outcome of a short-circuiting verification pass. When Valid
// is false, BlockIndex and Reason name the first failed check.
type Result struct {
	Valid      bool   `json:"valid"`
	Blocks     int    `json:"blocks"`
	BlockIndex int    `json:"block_index"`
	Reason     string `json:"reason,omitempty"`
	Expected   string `json:"expected,omitempty"`
	Actual     string `json:"actual,omitempty"`
}

// Finding is one integrity discrepancy reported by DetectTampering.
type Finding struct {
	BlockIndex int    `json:"block_index"`
	Reason     string `json:"reason"`
	Expected   string `json:"expected"`
	Actual     string `json:"actual"`
}

// Verify checks the genesis sentinel and then, for every later block, its
// link to the predecessor followed by its own hash. It stops at the first
// failure. An empty chain is valid.
func Verify(chain []block.Block) Result {
	res := Result{Valid: true, Blocks: len(chain), BlockIndex: -1}
	if len(chain) == 0 {
		return res
	}
	if chain[0].PreviousHash != ids.ZeroHash {
		return fail(res, 0, ReasonGenesis, ids.ZeroHash, chain[0].PreviousHash)
	}
	for i := 1; i < len(chain); i++ {
		cur, prev := &chain[i], &chain[i-1]
		if cur.PreviousHash != prev.Hash {
			return fail(res, i, ReasonPreviousHash, prev.Hash, cur.PreviousHash)
		}
		if h := cur.ComputeHash(); h != cur.Hash {
			return fail(res, i, ReasonHash, h, cur.Hash)
		}
	}
	return res
}

func fail(res Result, i int, reason, expected, actual string) Result {
	res.Valid = false
	res.BlockIndex = i
	res.Reason = reason
	res.Expected = expected
	res.Actual = actual
	return res
}

// DetectTampering walks every adjacent pair without stopping and reports
// each discrepancy. A block whose content and link are both wrong yields
// two findings, hash first.
func DetectTampering(chain []block.Block) []Finding {
	findings := []Finding{}
	for i := 1; i < len(chain); i++ {
		cur, prev := &chain[i], &chain[i-1]
		if h := cur.ComputeHash(); h != cur.Hash {
			findings = append(findings, Finding{
				BlockIndex: i,
				Reason:     ReasonHash,
				Expected:   h,
				Actual:     cur.Hash,
			})
		}
		if cur.PreviousHash != prev.Hash {
			findings = append(findings, Finding{
				BlockIndex: i,
				Reason:     ReasonPreviousHash,
				Expected:   prev.Hash,
				Actual:     cur.PreviousHash,
			})
		}
	}
	return findings
}
